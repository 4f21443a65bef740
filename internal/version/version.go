package version

import "fmt"

const AppName = "thermodisp"

type Version struct {
	MajorNumber int64
	MinorNumber int64
	PatchNumber int64
}

// String generates a human readable Version
func (m Version) String() string {
	return fmt.Sprintf("%d.%d.%d", m.MajorNumber, m.MinorNumber, m.PatchNumber)
}

var (
	AppVersion = Version{
		MajorNumber: 0,
		MinorNumber: 3,
		PatchNumber: 0,
	}
)

package config

import (
	"io/ioutil"
	"sync"
	"time"

	"github.com/jypelle/thermodisp/apimodel"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const saveDelay = 10 * time.Second

type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	completeStateFilename string
}

func NewServerState(completeStateFilename string) *ServerState {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
	}

	rawConfig, err := ioutil.ReadFile(completeStateFilename)
	if err == nil {
		// Interpret state file
		err = yaml.Unmarshal(rawConfig, &serverState.serverStateConfig)
		if err != nil {
			logrus.Fatalf("Unable to interpret state file: %v\n", err)
		}
		if !serverState.serverStateConfig.Screen.Valid() {
			logrus.Warnf("Unknown screen %q in state file, using %q", serverState.serverStateConfig.Screen, apimodel.TemperatureScreen)
			serverState.serverStateConfig.Screen = apimodel.TemperatureScreen
		}
	} else {
		// Create default state file
		logrus.Infof("Create default state file")
		serverState.SetScreen(apimodel.TemperatureScreen)
	}

	return serverState
}

func (ss *ServerState) Screen() apimodel.Screen {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.Screen
}

func (ss *ServerState) SetScreen(screen apimodel.Screen) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.Screen = screen
	ss.scheduleSave()
}

func (ss *ServerState) scheduleSave() {
	if ss.backupTimer == nil {
		ss.backupTimer = time.AfterFunc(saveDelay, func() {
			ss.lock.Lock()
			defer ss.lock.Unlock()
			ss.save()
		})
	} else {
		ss.backupTimer.Reset(saveDelay)
	}
}

func (ss *ServerState) save() {
	logrus.Infof("Save state file: %s", ss.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		logrus.Fatalf("Unable to serialize state file: %v\n", err)
	}
	err = ioutil.WriteFile(ss.completeStateFilename, rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save state file: %v\n", err)
	}
}

// FlushSave writes a pending change right away.
func (ss *ServerState) FlushSave() {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	if ss.backupTimer != nil {
		if ss.backupTimer.Stop() {
			ss.save()
		}
	}
}

type ServerStateConfig struct {
	Screen apimodel.Screen `yaml:"screen"`
}

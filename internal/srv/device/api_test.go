package device

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jypelle/thermodisp/apimodel"
	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testApiKey = "secret"

// newTestApi returns an api whose events are answered like the event loop
// would, until the test ends.
func newTestApi(t *testing.T) (*Api, *int) {
	p, err := config.ParseServerParam(nil)
	require.NoError(t, err)
	p.ApiParam.ApiKey = testApiKey
	api := NewApi(&config.ServerConfig{ConfigDir: t.TempDir(), ServerParam: p})

	presses := 0
	done := make(chan bool)
	t.Cleanup(func() { close(done) })
	go func() {
		for {
			select {
			case ev := <-api.EventChannel():
				switch data := ev.Data.(type) {
				case event.ApiEventStatusData:
					celsius := 21.5
					data.Status.Screen = apimodel.TemperatureScreen
					data.Status.Temperature = &celsius
					data.Status.DisplayState = "Ready"
					data.Status.DisplayLines = []string{"Temperature:    ", "21.50C          "}
					data.Status.Backlight = true
					ev.Result <- nil
				case event.ApiEventButtonPressData:
					presses++
					ev.Result <- nil
				}
			case <-done:
				return
			}
		}
	}()
	return api, &presses
}

func serve(api *Api, method, target string, withKey bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	if withKey {
		r.Header.Set("x-api-key", testApiKey)
	}
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)
	return w
}

func TestApiRequiresKey(t *testing.T) {
	api, _ := newTestApi(t)

	w := serve(api, "GET", "/api/is_alive", false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(api, "GET", "/api/is_alive", true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApiStatus(t *testing.T) {
	api, _ := newTestApi(t)

	w := serve(api, "GET", "/api/status", true)
	require.Equal(t, http.StatusOK, w.Code)

	var status apimodel.Status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, apimodel.TemperatureScreen, status.Screen)
	require.NotNil(t, status.Temperature)
	assert.Equal(t, 21.5, *status.Temperature)
	assert.Equal(t, "Ready", status.DisplayState)
	assert.Equal(t, []string{"Temperature:    ", "21.50C          "}, status.DisplayLines)
}

func TestApiDisplaySnapshot(t *testing.T) {
	api, _ := newTestApi(t)

	w := serve(api, "GET", "/api/display.png", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 104, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestApiButtonPress(t *testing.T) {
	api, presses := newTestApi(t)

	w := serve(api, "POST", "/api/button/press", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *presses)

	w = serve(api, "GET", "/api/button/press", true)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 1, *presses)
}

func TestApiNotFound(t *testing.T) {
	api, _ := newTestApi(t)

	w := serve(api, "GET", "/api/unknown", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApiVersion(t *testing.T) {
	api, _ := newTestApi(t)

	w := serve(api, "GET", "/api/version", true)
	require.Equal(t, http.StatusOK, w.Code)

	var v map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	assert.Equal(t, "thermodisp", v["name"])
}

func TestApiDisabled(t *testing.T) {
	api, _ := newTestApi(t)

	// Neither starts a server nor blocks
	api.Start()
	api.StopSendingEvent()
}

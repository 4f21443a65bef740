package apimodel

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenNext(t *testing.T) {
	assert.Equal(t, ElapsedScreen, TemperatureScreen.Next())
	assert.Equal(t, TemperatureScreen, ElapsedScreen.Next())
	assert.Equal(t, TemperatureScreen, TemperatureScreen.Next().Next())
}

func TestScreenValid(t *testing.T) {
	assert.True(t, TemperatureScreen.Valid())
	assert.True(t, ElapsedScreen.Valid())
	assert.False(t, Screen("").Valid())
	assert.False(t, Screen("clock").Valid())
}

func TestSendError(t *testing.T) {
	w := httptest.NewRecorder()
	NewErrorMessage(http.StatusForbidden, "").SendError(w)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status_code":403,"message":"Forbidden"}`, w.Body.String())
}

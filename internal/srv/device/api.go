package device

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/thermodisp/apimodel"
	"github.com/jypelle/thermodisp/internal/images"
	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/jypelle/thermodisp/internal/tool"
	"github.com/jypelle/thermodisp/internal/version"
	"github.com/sirupsen/logrus"
)

const apiEventTimeout = 5 * time.Second

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config *config.ServerConfig
}

func NewApi(config *config.ServerConfig) *Api {
	api := Api{
		config:       config,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						GlobalErrorAction(w, fmt.Sprintf("%v", rec), http.StatusInternalServerError)
					}
				}()

				// Check API Key
				apiKey := r.Header.Get("x-api-key")
				if apiKey != config.ServerParam.ApiParam.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// Server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/version",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"name": version.AppName, "version": version.AppVersion.String()})
		}).Methods("GET")
	api.apiRouter.HandleFunc("/status",
		func(w http.ResponseWriter, r *http.Request) {
			status, err := api.status()
			if err != nil {
				GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(status)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/display.png",
		func(w http.ResponseWriter, r *http.Request) {
			status, err := api.status()
			if err != nil {
				GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			err = png.Encode(w, images.LcdImage(status.DisplayLines, status.Backlight))
			if err != nil {
				logrus.Warnf("Unable to encode display snapshot: %v", err)
			}
		}).Methods("GET")
	api.apiRouter.HandleFunc("/button/press",
		func(w http.ResponseWriter, r *http.Request) {
			err := api.send(event.ApiEventButtonPressData{})
			if err == nil {
				ErrorStatusAction(w, r, http.StatusOK)
			} else {
				GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
			}
		}).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization", "X-Api-Key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(config.ServerParam.ApiParam.SslPort, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 120,
	}

	return &api
}

// send hands data to the event loop and waits for its answer.
func (d *Api) send(data interface{}) error {
	result := make(chan error, 1)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-time.After(apiEventTimeout):
		return fmt.Errorf("event loop busy")
	}
	return <-result
}

func (d *Api) status() (*apimodel.Status, error) {
	status := &apimodel.Status{}
	if err := d.send(event.ApiEventStatusData{Status: status}); err != nil {
		return nil, err
	}
	return status, nil
}

func (d *Api) Start() {
	if !d.config.ApiParam.Enabled {
		logrus.Infof("Api device disabled")
		return
	}
	logrus.Infof("Start api device")

	existServerCert, err := tool.IsFileExists(d.selfSignedCertFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedCertFilename(), err)
	}

	existServerKey, err := tool.IsFileExists(d.selfSignedKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedKeyFilename(), err)
	}

	if !existServerCert || !existServerKey {
		logrus.Info("Missing cert and key files, trying to generate them...")
		err = tool.GenerateTlsCertificate(tool.CertificateRequest{
			Organization: version.AppName,
			CommonName:   "Thermodisp Server",
			KeyFilename:  d.selfSignedKeyFilename(),
			CertFilename: d.selfSignedCertFilename(),
		})
		if err != nil {
			logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
		}
		logrus.Info("Self-signed cert and key files generated")
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.selfSignedCertFilename(), d.selfSignedKeyFilename())
		if err != nil && err != http.ErrServerClosed {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	if !d.config.ApiParam.Enabled {
		return
	}
	logrus.Infof("Stop api device")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		logrus.Warnf("Unable to shutdown api server: %v", err)
	}
}

func (d *Api) EventChannel() <-chan event.ApiEvent {
	return d.eventChannel
}

// Handler returns the API routes without TLS nor middlewares.
func (d *Api) Handler() http.Handler {
	return d.router
}

func (d *Api) selfSignedKeyFilename() string {
	return filepath.Join(d.config.ConfigDir, "key.pem")
}

func (d *Api) selfSignedCertFilename() string {
	return filepath.Join(d.config.ConfigDir, "cert.pem")
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	apimodel.NewErrorMessage(status, "").SendError(w)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	apimodel.NewErrorMessage(status, message).SendError(w)
}

package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/joho/godotenv"
)

var InstanceId string

func LoadEnv(service string) {
	log.Infof("%s service configuration and env variables loading started ...", service)
	err := godotenv.Load("./.env")
	if err != nil {
		log.Warnf("no .env file loaded, using process environment: %s", err)
		return
	}

	log.Info(".env file loaded.")
}

func CreateUniqueInstance(service string) string {
	id, err := uuid.NewV4() // instance identifier
	if err != nil {
		log.Errorf("error generating instanceId: %s", err)
		os.Exit(0)
	}
	InstanceId = id.String()
	log.Infof(service+" service with Instance ID: %s is ready", id)
	return id.String()
}

func GetInstanceId() string {
	return InstanceId
}

func CORS(origins []string) *cors.Cors {
	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return corsOptions
}

func ensureDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return err
}

// Logging sends the service log to <dir>/<service>.log and registers the
// error file hook.
func Logging(service, dir string) {
	if err := ensureDir(dir); err != nil {
		log.Warnf("unable to create folder for log %s", err)
		return
	}

	logFilePath := filepath.Join(dir, service+".log")

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}

	log.SetOutput(file)

	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.InfoLevel)
	log.AddHook(NewErrorFileHook(dir))

	log.Infof("log to file started for service: %s", service)
}

// ErrorFileHook appends every error level entry to <dir>/error.log.
type ErrorFileHook struct {
	mu        sync.Mutex
	path      string
	formatter log.Formatter
}

func NewErrorFileHook(dir string) *ErrorFileHook {
	return &ErrorFileHook{
		path:      filepath.Join(dir, "error.log"),
		formatter: &log.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano},
	}
}

func (h *ErrorFileHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel}
}

func (h *ErrorFileHook) Fire(entry *log.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}

func CustomLoggerMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Printf("%s %s %s %d %s %s",
					r.Method,
					r.RequestURI,
					r.RemoteAddr,
					ww.Status(),
					http.StatusText(ww.Status()),
					time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// FailedRequestLogger appends a line for every response with status >= 400
// to a per day file <dir>/YYYY-MM-DD.log.
func FailedRequestLogger(dir string) func(next http.Handler) http.Handler {
	var mu sync.Mutex

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status < http.StatusBadRequest {
					return
				}

				now := time.Now()
				line := fmt.Sprintf("[%s] %s %s - %d - IP: %s\n",
					now.Format(time.RFC3339), r.Method, r.URL.RequestURI(), status, r.RemoteAddr)

				mu.Lock()
				defer mu.Unlock()

				if err := ensureDir(dir); err != nil {
					log.Warnf("unable to create request log folder %s", err)
					return
				}
				path := filepath.Join(dir, now.Format("2006-01-02")+".log")
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					log.Warnf("unable to open request log %s", err)
					return
				}
				defer f.Close()

				if _, err := f.WriteString(line); err != nil {
					log.Warnf("unable to write request log %s", err)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the correlation id between services.
const RequestIDHeader = "X-Request-ID"

type Logger struct {
	*logrus.Entry
}

var (
	once sync.Once
	base *logrus.Logger
)

// New returns a logger sharing one process-wide logrus instance. The first
// call configures it from ENVIRONMENT and LOG_LEVEL.
func New() *Logger {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		apply(base, os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
	})
	return &Logger{Entry: logrus.NewEntry(base)}
}

// Configure re-applies formatter and level, e.g. after config is loaded.
func Configure(env, level string) {
	New()
	apply(base, env, level)
}

// SetOutput redirects all log output. Tests use it with io.Discard.
func SetOutput(w io.Writer) {
	New()
	base.SetOutput(w)
}

func apply(l *logrus.Logger, env, level string) {
	// Local env = pretty console; others = JSON
	if env == "" || env == "local" {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
}

// RequestID returns the caller's X-Request-ID or a fresh uuid.
func RequestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"req_id":     RequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}

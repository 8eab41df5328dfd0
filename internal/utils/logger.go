package utils

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

type Fields = logrus.Fields

const (
	CorrelationIDKey contextKey = "correlation_id"
	RequestIDKey     contextKey = "request_id"
	VideoIDKey       contextKey = "video_id"

	// FailureErrorKey holds the *AppError a handler reports if it panics.
	FailureErrorKey = "failure_error"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

const logTimestampFormat = "2006-01-02T15:04:05.000Z07:00"

var logger = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(jsonFormatter())
	return l
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: logTimestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	}
}

// ConfigureLogger applies the level and output format from configuration.
// Until it is called the logger writes JSON at info level.
func ConfigureLogger(level, format string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch format {
	case "", LogFormatJSON:
		logger.SetFormatter(jsonFormatter())
	case LogFormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: logTimestampFormat,
		})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	logger.SetLevel(parsed)
	return nil
}

func GetLogger() *logrus.Logger {
	return logger
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

func GetCorrelationID(ctx context.Context) string {
	return stringValue(ctx, CorrelationIDKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// WithVideoID attaches the upstream video ID so every later log line of the request carries it.
func WithVideoID(ctx context.Context, videoID string) context.Context {
	return context.WithValue(ctx, VideoIDKey, videoID)
}

func GetVideoID(ctx context.Context) string {
	return stringValue(ctx, VideoIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if id, ok := ctx.Value(key).(string); ok {
		return id
	}
	return ""
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}

func GenerateRequestID() string {
	return "req_" + uuid.New().String()
}

// LoggerFromContext returns an entry pre-populated with the request scoped IDs found in ctx.
func LoggerFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	for _, key := range []contextKey{CorrelationIDKey, RequestIDKey, VideoIDKey} {
		if value := stringValue(ctx, key); value != "" {
			fields[string(key)] = value
		}
	}
	return logger.WithFields(fields)
}

func entryWith(ctx context.Context, fields []logrus.Fields) *logrus.Entry {
	entry := LoggerFromContext(ctx)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	return entry
}

func LogInfo(ctx context.Context, message string, fields ...logrus.Fields) {
	entryWith(ctx, fields).Info(message)
}

func LogError(ctx context.Context, message string, err error, fields ...logrus.Fields) {
	entryWith(ctx, fields).WithError(err).Error(message)
}

func LogWarn(ctx context.Context, message string, fields ...logrus.Fields) {
	entryWith(ctx, fields).Warn(message)
}

func LogDebug(ctx context.Context, message string, fields ...logrus.Fields) {
	entryWith(ctx, fields).Debug(message)
}

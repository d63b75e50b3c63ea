package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// GetDefault returns the shared logger instance
func GetDefault() *Logger {
	once.Do(func() {
		defaultLogger = New()
	})
	return defaultLogger
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithSpot adds a spot id to logger context
func (l *Logger) WithSpot(spotID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("spot_id", spotID)),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Allocation engine logging methods

// LogAllocation logs a successful spot assignment
func (l *Logger) LogAllocation(ctx context.Context, plate, gateID, spotID string, totalCost, estimatedTime float64) {
	l.Logger.InfoContext(ctx,
		"Spot Allocated",
		slog.String("license_plate", plate),
		slog.String("gate_id", gateID),
		slog.String("spot_id", spotID),
		slog.Float64("total_cost", totalCost),
		slog.Float64("estimated_time", estimatedTime),
	)
}

// LogTransition logs a committed spot state transition
func (l *Logger) LogTransition(ctx context.Context, spotID, from, to, plate string) {
	l.Logger.InfoContext(ctx,
		"Spot Transition",
		slog.String("spot_id", spotID),
		slog.String("from", from),
		slog.String("to", to),
		slog.String("license_plate", plate),
	)
}

// LogEviction logs a reservation released by its eviction timer
func (l *Logger) LogEviction(spotID string, waited time.Duration) {
	l.Logger.Info(
		"Reservation Evicted",
		slog.String("spot_id", spotID),
		slog.Duration("waited", waited),
	)
}

// LogLotFull logs an arrival that could not be assigned a spot
func (l *Logger) LogLotFull(ctx context.Context, plate, gateID string) {
	l.Logger.Warn(
		"Lot Full",
		slog.String("license_plate", plate),
		slog.String("gate_id", gateID),
	)
}

// LogSideEffectFailure logs a failed notification/publish without failing the caller
func (l *Logger) LogSideEffectFailure(ctx context.Context, effect string, err error) {
	l.Logger.ErrorContext(ctx,
		"Side Effect Failed",
		slog.String("effect", effect),
		slog.String("error", err.Error()),
	)
}

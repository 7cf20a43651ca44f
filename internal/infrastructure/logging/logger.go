package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	fieldsKey
)

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, text
	Output      io.Writer
	AddSource   bool
	ServiceName string
	Environment string
	// PolicySource names the file the analytics thresholds were read from.
	// Empty means the built-in defaults.
	PolicySource string
}

// NewLogger creates the structured logger. Every record carries the service
// metadata, the request id and whatever fields the request has collected
// with AddFields. Durations are written as fractional milliseconds under
// "<key>_ms".
func NewLogger(cfg Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: replaceAttr,
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	policy := cfg.PolicySource
	if policy == "" {
		policy = "default"
	}
	static := []slog.Attr{
		slog.String("service", cfg.ServiceName),
		slog.String("policy_source", policy),
	}
	if cfg.Environment != "" {
		static = append(static, slog.String("environment", cfg.Environment))
	}

	return slog.New(contextHandler{handler.WithAttrs(static)})
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch {
	case a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime:
		return slog.String(a.Key, a.Value.Time().UTC().Format(time.RFC3339Nano))
	case a.Value.Kind() == slog.KindDuration:
		ms := float64(a.Value.Duration()) / float64(time.Millisecond)
		return slog.Float64(a.Key+"_ms", ms)
	}
	return a
}

// contextHandler appends the request-scoped attributes found in the context.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetRequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if bag, ok := ctx.Value(fieldsKey).(*fieldBag); ok {
		r.AddAttrs(bag.snapshot()...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// fieldBag collects attributes while a request runs. It is shared by every
// context derived from the one it was installed in, so fields added deep in
// a handler are visible to the access log written after the handler returns.
type fieldBag struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

func (b *fieldBag) set(a slog.Attr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.attrs {
		if b.attrs[i].Key == a.Key {
			b.attrs[i] = a
			return
		}
	}
	b.attrs = append(b.attrs, a)
}

func (b *fieldBag) snapshot() []slog.Attr {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]slog.Attr(nil), b.attrs...)
}

// WithFields installs an empty field bag. Call it once per request.
func WithFields(ctx context.Context) context.Context {
	return context.WithValue(ctx, fieldsKey, &fieldBag{})
}

// AddFields records key/value pairs, in the same form slog.Logger.Info
// accepts, on the request's field bag. A repeated key overwrites the earlier
// value. Without a bag in ctx it does nothing.
func AddFields(ctx context.Context, args ...any) {
	bag, ok := ctx.Value(fieldsKey).(*fieldBag)
	if !ok || len(args) == 0 {
		return
	}
	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "", 0)
	r.Add(args...)
	r.Attrs(func(a slog.Attr) bool {
		bag.set(a)
		return true
	})
}

// Caller tags the request with the authenticated subject and role.
func Caller(ctx context.Context, subject, role string) {
	AddFields(ctx, "caller", subject, "role", role)
}

// Technician tags the request with the technician a report is about.
func Technician(ctx context.Context, name string) {
	AddFields(ctx, "technician", name)
}

// ReportID tags the request with the id of the report it produced.
func ReportID(ctx context.Context, id string) {
	AddFields(ctx, "report_id", id)
}

// LogPanic logs a recovered panic with the goroutine's stack.
func LogPanic(ctx context.Context, logger *slog.Logger, panicValue any) {
	logger.ErrorContext(ctx, "panic recovered",
		"panic", panicValue,
		"stack_trace", string(debug.Stack()),
	)
}

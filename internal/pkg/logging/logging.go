package logging

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// apiKeyParam matches an API key passed as a "key" query parameter.
var apiKeyParam = regexp.MustCompile(`([?&]key=)[^&\s"]+`)

// Setup initialises the global slog default logger on stdout.
// level may be "debug", "info", "warn", or "error" (default "info").
// format may be "json" or "text" (default "json").
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redactSecrets,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// redactSecrets masks upstream API keys in any string attribute, so a URL that
// ends up in an error message is safe to log.
func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	var v string
	switch a.Value.Kind() {
	case slog.KindString:
		v = a.Value.String()
	case slog.KindAny:
		err, ok := a.Value.Any().(error)
		if !ok {
			return a
		}
		v = err.Error()
	default:
		return a
	}
	if strings.Contains(v, "key=") {
		a.Value = slog.StringValue(apiKeyParam.ReplaceAllString(v, "${1}REDACTED"))
	}
	return a
}

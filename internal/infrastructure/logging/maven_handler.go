package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// MavenHandler is a slog.Handler that formats logs in Maven-style:
// [LEVEL] [SYSTEM] [HH:MM:SS] message key=value key=value
type MavenHandler struct {
	w         io.Writer
	level     slog.Level
	mu        *sync.Mutex
	useColors bool
	attrs     []slog.Attr
	group     string
}

// NewMavenHandler creates a new Maven-style handler
func NewMavenHandler(w io.Writer, opts *slog.HandlerOptions) *MavenHandler {
	h := &MavenHandler{
		w:         w,
		level:     slog.LevelInfo,
		mu:        &sync.Mutex{},
		useColors: isTerminal(w),
	}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level.Level()
	}
	return h
}

// isTerminal checks if the writer is a terminal (for color output)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Enabled reports whether the handler handles records at the given level.
func (h *MavenHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a log record
func (h *MavenHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	if h.useColors {
		buf.WriteString(h.levelColor(r.Level))
	}
	buf.WriteString("[")
	buf.WriteString(levelString(r.Level))
	buf.WriteString("]")
	if h.useColors {
		buf.WriteString(colorReset)
	}

	// Pull system out of the attrs so it renders as a bracketed prefix
	system := ""
	var rest []slog.Attr
	for _, a := range h.attrs {
		if a.Key == "system" {
			system = a.Value.String()
			continue
		}
		rest = append(rest, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "system" && system == "" {
			system = a.Value.String()
			return true
		}
		rest = append(rest, a)
		return true
	})

	if system != "" {
		buf.WriteString(" [")
		buf.WriteString(system)
		buf.WriteString("]")
	}

	if h.useColors {
		buf.WriteString(colorGray)
	}
	buf.WriteString(" [")
	buf.WriteString(r.Time.Format("15:04:05"))
	buf.WriteString("]")
	if h.useColors {
		buf.WriteString(colorReset)
	}

	buf.WriteString(" ")
	buf.WriteString(r.Message)

	for _, a := range rest {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		buf.WriteString(" ")
		if h.useColors {
			buf.WriteString(colorCyan)
		}
		buf.WriteString(key)
		if h.useColors {
			buf.WriteString(colorReset)
		}
		buf.WriteString("=")
		buf.WriteString(fmt.Sprintf("%v", a.Value.Any()))
	}

	buf.WriteString("\n")
	_, err := io.WriteString(h.w, buf.String())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *MavenHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a new handler with the given group name.
func (h *MavenHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *MavenHandler) levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorCyan
	default:
		return colorGray
	}
}

func levelString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

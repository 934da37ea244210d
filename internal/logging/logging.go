package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/idlab-discover/mchsim-cli/internal/ui"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> commune=<name> <formattedMessage>\n
//
// where <name> is trimmed and defaults to "(all)".
// Logf is safe for concurrent use; communes stepped in parallel share one logger.
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// OmitSubject controls whether the commune field is written.
	OmitSubject bool

	mu sync.Mutex
}

func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	l.Writer = w
	l.mu.Unlock()
}

func (l *Logger) Enabled() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Writer != nil
}

func (l *Logger) Logf(subject string, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)

	if l.OmitSubject {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	s := strings.TrimSpace(subject)
	if s == "" {
		s = "(all)"
	}
	fmt.Fprintf(l.Writer, "%s commune=%s %s\n", prefix, s, msg)
}

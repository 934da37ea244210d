package demographics

import (
	"fmt"
	"strings"
)

// Issue is one problem found in an input file.
type Issue struct {
	Line    int
	Column  string
	Commune string
	Message string
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", i.Line)
	}
	if i.Column != "" {
		fmt.Fprintf(&b, "%s: ", i.Column)
	}
	b.WriteString(i.Message)
	if i.Commune != "" {
		fmt.Fprintf(&b, " (commune %s)", i.Commune)
	}
	return b.String()
}

// InputError reports missing or malformed population data. A run cannot
// proceed with it.
type InputError struct {
	Source string
	Issues []Issue
}

func (e *InputError) Error() string {
	src := e.Source
	if src == "" {
		src = "input"
	}
	switch len(e.Issues) {
	case 0:
		return fmt.Sprintf("%s: invalid demographic data", src)
	case 1:
		return fmt.Sprintf("%s: %s", src, e.Issues[0])
	default:
		return fmt.Sprintf("%s: %s (and %d more problems)", src, e.Issues[0], len(e.Issues)-1)
	}
}

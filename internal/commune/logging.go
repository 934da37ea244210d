package commune

import (
	"io"

	"github.com/idlab-discover/mchsim-cli/internal/logging"
	"github.com/idlab-discover/mchsim-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Commune:", PrefixColor: ui.FgCyan}

// SetLogger enables package logging to w; nil disables it.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(commune, format string, args ...any) { logger.Logf(commune, format, args...) }

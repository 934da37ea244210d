package simulation

import (
	"io"

	"github.com/idlab-discover/mchsim-cli/internal/logging"
	"github.com/idlab-discover/mchsim-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Simulation:", PrefixColor: ui.FgMagenta, OmitSubject: true}

// SetLogger enables package logging to w; nil disables it.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(format string, args ...any) { logger.Logf("", format, args...) }

package provider

import "github.com/rs/zerolog"

// Reporter surfaces resolution and selection problems to the user. The MCP
// layer can plug in a notification-backed implementation; the default writes
// structured log lines.
type Reporter interface {
	Report(msg string)
}

type logReporter struct {
	log zerolog.Logger
}

// NewLogReporter returns a Reporter that logs at warn level.
func NewLogReporter(log zerolog.Logger) Reporter {
	return &logReporter{log: log}
}

func (r *logReporter) Report(msg string) {
	r.log.Warn().Msg(msg)
}

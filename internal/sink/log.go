package sink

import "codeberg.org/mutker/droidmon/internal/logger"

// Log records each delivery as a debug event.
type Log struct {
	logger logger.Logger
}

// NewLog returns a sink writing to log.
func NewLog(log logger.Logger) *Log {
	return &Log{logger: log}
}

func (l *Log) Deliver(name, value string) {
	l.logger.Debug().Str("metric", name).Str("value", value).Msg("Metric delivered")
}

package workflows

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// zapAdapter routes Temporal SDK logs through zap. Key-value pairs map onto
// the sugared logger's loosely typed fields.
type zapAdapter struct {
	s *zap.SugaredLogger
}

var _ log.Logger = (*zapAdapter)(nil)

func NewZapAdapter(logger *zap.Logger) log.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapAdapter{s: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (a *zapAdapter) Debug(msg string, keyvals ...interface{}) { a.s.Debugw(msg, keyvals...) }
func (a *zapAdapter) Info(msg string, keyvals ...interface{})  { a.s.Infow(msg, keyvals...) }
func (a *zapAdapter) Warn(msg string, keyvals ...interface{})  { a.s.Warnw(msg, keyvals...) }
func (a *zapAdapter) Error(msg string, keyvals ...interface{}) { a.s.Errorw(msg, keyvals...) }

// With satisfies log.WithLogger so workflow and activity loggers keep their
// tags.
func (a *zapAdapter) With(keyvals ...interface{}) log.Logger {
	return &zapAdapter{s: a.s.With(keyvals...)}
}

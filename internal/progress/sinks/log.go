package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/md-check-link/internal/progress"
)

// LogSink writes each progress event as a debug log entry.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.Stringer("run_id", evt.RunUUID()),
			zap.String("stage", string(evt.Stage)),
		}
		switch evt.Stage {
		case progress.StageLinkResolved:
			fields = append(fields,
				zap.String("link", evt.Link),
				zap.String("host", evt.Host),
				zap.String("verdict", evt.Verdict),
				zap.String("status_class", string(evt.StatusClass)),
				zap.Int("attempts", evt.Attempts),
				zap.Int("occurrences", evt.Occurrences),
			)
		case progress.StageRunDone:
			fields = append(fields, zap.Int("links", evt.Links), zap.Int("dead", evt.Dead))
		}
		fields = append(fields, zap.Duration("dur", evt.Dur))
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Debug("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}

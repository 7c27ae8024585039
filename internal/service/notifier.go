package service

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log. It is used when no chat
// transport is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.log.Info("notification", zap.String("text", text))
	return nil
}

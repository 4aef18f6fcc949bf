package notification

import "log/slog"

// LogNotifier writes rendered notices to a logger instead of sending them.
// It stands in for SMTP when running locally.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l *LogNotifier) Send(noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error {
	textBody, _, err := renderBodies(noticeTemplate, notification.Data)
	if err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Notice",
		"type", noticeType,
		"to", notification.To,
		"subject", noticeTemplate.Subject,
		"body", textBody,
	)
	return nil
}

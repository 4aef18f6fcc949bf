package notification

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NotificationManager routes notices to the notifiers registered for them
type NotificationManager struct {
	mu                   sync.RWMutex
	notifiers            map[NotificationSystem]Notifier
	notificationRegistry map[NoticeType]map[NotificationSystem]NoticeTemplate
}

// NotificationManagerOption is a function that configures a NotificationManager
type NotificationManagerOption func(*NotificationManager) error

func NewNotificationManager(opts ...NotificationManagerOption) (*NotificationManager, error) {
	nm := &NotificationManager{
		notifiers:            make(map[NotificationSystem]Notifier),
		notificationRegistry: make(map[NoticeType]map[NotificationSystem]NoticeTemplate),
	}
	for _, opt := range opts {
		if err := opt(nm); err != nil {
			return nil, err
		}
	}
	return nm, nil
}

// WithSMTP adds an email notifier with the provided SMTP configuration
func WithSMTP(config SMTPConfig) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		emailNotifier, err := NewEmailNotifier(config)
		if err != nil {
			return err
		}
		nm.RegisterNotifier(EmailSystem, emailNotifier)
		return nil
	}
}

// WithNotifier registers notifier for system
func WithNotifier(system NotificationSystem, notifier Notifier) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		nm.RegisterNotifier(system, notifier)
		return nil
	}
}

// WithSignupConfirmationTemplate registers the signup confirmation notice for
// each given system
func WithSignupConfirmationTemplate(systems ...NotificationSystem) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		tmpl := NoticeTemplate{
			Subject: "Confirm your Skycast account",
			Text:    loadTemplate("templates/email/signup_confirmation.txt"),
			Html:    loadTemplate("templates/email/signup_confirmation.html"),
		}
		for _, system := range systems {
			if err := nm.RegisterNotification(SignupConfirmation, system, tmpl); err != nil {
				return err
			}
		}
		return nil
	}
}

// RegisterNotifier registers a notifier for a specific system
func (nm *NotificationManager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.notifiers[system] = notifier
}

// RegisterNotification adds a template for a notice type on a system
func (nm *NotificationManager) RegisterNotification(noticeType NoticeType, system NotificationSystem, tmpl NoticeTemplate) error {
	if noticeType == "" || system == "" {
		return fmt.Errorf("invalid input: notice type and system cannot be empty")
	}
	if tmpl.Text == "" && tmpl.Html == "" {
		return fmt.Errorf("template for %s has no body", noticeType)
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, exists := nm.notificationRegistry[noticeType]; !exists {
		nm.notificationRegistry[noticeType] = make(map[NotificationSystem]NoticeTemplate)
	}
	nm.notificationRegistry[noticeType][system] = tmpl
	return nil
}

// Send delivers a notice on every system that has both a template and a
// notifier registered. Failures are joined; a notice with no template at all
// is an error.
func (nm *NotificationManager) Send(noticeType NoticeType, notification NotificationData) error {
	nm.mu.RLock()
	templates, exists := nm.notificationRegistry[noticeType]
	if !exists {
		nm.mu.RUnlock()
		return fmt.Errorf("no templates registered for notice type: %s", noticeType)
	}
	type delivery struct {
		system   NotificationSystem
		notifier Notifier
		tmpl     NoticeTemplate
	}
	var deliveries []delivery
	for system, tmpl := range templates {
		if notifier, ok := nm.notifiers[system]; ok {
			deliveries = append(deliveries, delivery{system, notifier, tmpl})
		}
	}
	nm.mu.RUnlock()

	if len(deliveries) == 0 {
		return fmt.Errorf("no notifier registered for notice type: %s", noticeType)
	}

	var errs []error
	for _, d := range deliveries {
		if err := d.notifier.Send(noticeType, notification, d.tmpl); err != nil {
			slog.Error("Failed to send notification", "system", d.system, "type", noticeType, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", d.system, err))
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"github.com/tendant/skycast-auth/pkg/notification"
)

// EmailConfig holds SMTP configuration. With Enabled false, notices are
// written to the log instead of being sent.
type EmailConfig struct {
	Enabled  bool   `env:"SKYCAST_EMAIL_ENABLED" env-default:"false"`
	Host     string `env:"SKYCAST_EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"SKYCAST_EMAIL_PORT" env-default:"1025"`
	Username string `env:"SKYCAST_EMAIL_USERNAME" env-default:""`
	Password string `env:"SKYCAST_EMAIL_PASSWORD" env-default:""`
	From     string `env:"SKYCAST_EMAIL_FROM" env-default:"noreply@skycast.local"`
	TLS      bool   `env:"SKYCAST_EMAIL_TLS" env-default:"false"`
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}

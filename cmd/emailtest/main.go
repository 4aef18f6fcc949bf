// Command emailtest sends a sample signup confirmation email through the
// SMTP server configured for cmd/authdev.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/skycast-auth/pkg/config"
	"github.com/tendant/skycast-auth/pkg/notification"
)

func main() {
	to := flag.String("to", "", "Recipient email address")
	name := flag.String("name", "Skycast Tester", "Recipient name used in the greeting")
	link := flag.String("link", "http://localhost:9999/auth/v1/verify?token=test&type=signup", "Confirmation link to include")
	flag.Parse()

	if *to == "" {
		fmt.Fprintln(os.Stderr, "Error: -to is required")
		os.Exit(1)
	}

	config.LoadEnvFile()
	var cfg config.EmailConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	manager, err := notification.NewNotificationManager(
		notification.WithSMTP(cfg.ToSMTPConfig()),
		notification.WithSignupConfirmationTemplate(notification.EmailSystem),
	)
	if err != nil {
		slog.Error("Failed to create mail client", "host", cfg.Host, "port", cfg.Port, "error", err)
		os.Exit(1)
	}

	err = manager.Send(notification.SignupConfirmation, notification.NotificationData{
		To: *to,
		Data: map[string]string{
			"Name":             *name,
			"ConfirmationLink": *link,
			"ExpiryHours":      "24",
		},
	})
	if err != nil {
		slog.Error("Failed to send email", "to", *to, "error", err)
		os.Exit(1)
	}

	fmt.Println("Email sent successfully!")
}

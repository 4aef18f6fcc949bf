// Package notification sends notices such as the signup confirmation email.
//
// A NotificationManager holds templates per notice type and system and
// routes each Send to the registered notifiers:
//
//	nm, err := notification.NewNotificationManager(
//		notification.WithSMTP(smtpConfig),
//		notification.WithSignupConfirmationTemplate(notification.EmailSystem),
//	)
//	err = nm.Send(notification.SignupConfirmation, notification.NotificationData{
//		To:   "jane@example.com",
//		Data: map[string]string{"Name": "Jane", "ConfirmationLink": link, "ExpiryHours": "24"},
//	})
//
// LogNotifier writes notices to slog, which is enough for local development.
package notification

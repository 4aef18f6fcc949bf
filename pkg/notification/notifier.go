package notification

// NoticeType identifies a kind of notice, e.g. a signup confirmation
type NoticeType string

// NotificationSystem is a delivery channel
type NotificationSystem string

const (
	EmailSystem NotificationSystem = "email"
	LogSystem   NotificationSystem = "log"

	SignupConfirmation NoticeType = "signup_confirmation"
)

type NotificationData struct {
	To   string            // Recipient address
	Data map[string]string // Template values
}

// NoticeTemplate holds the subject and bodies of a notice. Bodies are Go
// templates executed against NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}

package notification

import "sync"

// MockNotifier records what it is asked to send
type MockNotifier struct {
	mu   sync.Mutex
	sent []NotificationData
	Err  error
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, notification)
	return nil
}

// Sent returns a copy of the recorded notifications
func (m *MockNotifier) Sent() []NotificationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotificationData, len(m.sent))
	copy(out, m.sent)
	return out
}

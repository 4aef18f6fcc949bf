package signup

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingObserver struct {
	states      int
	navigations int
}

func (o *countingObserver) OnStateChanged(state State) { o.states++ }
func (o *countingObserver) OnNavigateToLogin()         { o.navigations++ }

func TestNewCompositeObserver(t *testing.T) {
	first := &countingObserver{}
	second := &countingObserver{}

	obs := NewCompositeObserver(first, nil, second)
	obs.OnStateChanged(State{})
	obs.OnNavigateToLogin()

	assert.Equal(t, 1, first.states)
	assert.Equal(t, 1, second.navigations)

	assert.IsType(t, NoopObserver{}, NewCompositeObserver())
	assert.Same(t, first, NewCompositeObserver(nil, first))
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLoggingObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.OnStateChanged(State{Email: "jane@example.com", Password: "secret1", Status: Status{Kind: StatusSubmitting}})
	obs.OnStateChanged(State{Email: "jane@example.com", Password: "secret1", Status: Status{Kind: StatusSubmitting}})

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("signup status changed")))
	assert.Contains(t, out, "status=submitting")
	assert.NotContains(t, out, "secret1")
}

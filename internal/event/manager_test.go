package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitEventOnlyReachesMatchingListeners(t *testing.T) {
	m := NewManager()

	var confirmed, failed []interface{}
	m.AddEventListener(TxConfirmedEvent, func(msg interface{}) { confirmed = append(confirmed, msg) })
	m.AddEventListener(TxFailedEvent, func(msg interface{}) { failed = append(failed, msg) })

	m.EmitEvent(TxConfirmedEvent, "a")
	m.EmitEvent(TxConfirmedEvent, "b")
	m.EmitEvent(ViewRefreshedEvent, "ignored")

	assert.Equal(t, []interface{}{"a", "b"}, confirmed)
	assert.Empty(t, failed)
}

func TestListenerMayRegisterDuringEmit(t *testing.T) {
	m := NewManager()
	calls := 0
	m.AddEventListener(TxConfirmedEvent, func(msg interface{}) {
		calls++
		m.AddEventListener(TxConfirmedEvent, func(msg interface{}) { calls++ })
	})

	m.EmitEvent(TxConfirmedEvent, nil)
	assert.Equal(t, 1, calls)

	m.EmitEvent(TxConfirmedEvent, nil)
	assert.Equal(t, 3, calls)
}

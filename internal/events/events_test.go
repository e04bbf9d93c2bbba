package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	owner := uint64(3)
	e := NewEvent(TaskCompleted, &owner, 1, 2)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TaskCompleted, e.Type)
	assert.Equal(t, []uint64{1, 2}, e.TaskIDs)
	assert.Equal(t, "UTC", e.OccurredAt.Location().String())
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "tasktracker.history.cleared", Subject(HistoryCleared))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(NewEvent(TaskCreated, nil, 1)))
	require.NoError(t, r.Publish(NewEvent(TaskDeleted, nil, 1)))

	assert.Equal(t, []EventType{TaskCreated, TaskDeleted}, r.Types())
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1")
	assert.Error(t, err)
}

package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	s, err = ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestIsOpen(t *testing.T) {
	assert.True(t, (&Schedule{Status: StatusPending}).IsOpen())
	assert.True(t, (&Schedule{Status: "In-Progress"}).IsOpen())
	assert.False(t, (&Schedule{Status: "COMPLETED"}).IsOpen())
}

func TestNewAutoSchedule(t *testing.T) {
	now := time.Now()
	s := NewAutoSchedule(42, now)

	assert.Equal(t, uint(42), s.DeviceID)
	assert.Equal(t, "Auto", s.MaintenanceType)
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, now, s.ScheduledDate)
	require.NotNil(t, s.Description)
	assert.Equal(t, "Auto created when device set to maintenance", *s.Description)
	assert.Nil(t, s.CompletedDate)
}

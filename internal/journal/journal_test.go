package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/rts-forge/internal/control"
	"github.com/annel0/rts-forge/internal/vec"
)

func TestCommandJournal_AppendAndRecent(t *testing.T) {
	j, err := NewCommandJournal(t.TempDir(), false)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(control.CommandEvent{Type: "core:move",
		Point: &vec.Vec2Float{X: 1, Y: 2}}, 1))
	time.Sleep(time.Millisecond) // гарантируем разные наносекундные ключи
	require.NoError(t, j.Append(control.CommandEvent{Type: "core:stop"}, 2))
	time.Sleep(time.Millisecond)
	require.NoError(t, j.Append(control.CommandEvent{Type: "core:unknown"}, 0))

	records, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Новые записи первыми
	assert.Equal(t, "core:unknown", records[0].Event.Type)
	assert.Equal(t, 0, records[0].Handled, "Необработанная команда должна быть видна в журнале")
	assert.Equal(t, "core:stop", records[1].Event.Type)
	assert.Equal(t, 2, records[1].Handled)
}

func TestCommandJournal_Compressed(t *testing.T) {
	j, err := NewCommandJournal(t.TempDir(), true)
	require.NoError(t, err)
	defer j.Close()

	ev := control.CommandEvent{Type: "core:move", Point: &vec.Vec2Float{X: -5.5, Y: 9.25}}
	require.NoError(t, j.Append(ev, 1))

	records, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "core:move", records[0].Event.Type)
	require.NotNil(t, records[0].Event.Point)
	assert.Equal(t, vec.Vec2Float{X: -5.5, Y: 9.25}, *records[0].Event.Point)
	assert.NotEmpty(t, records[0].ID)
}

func TestCommandJournal_ClosedRejects(t *testing.T) {
	j, err := NewCommandJournal(t.TempDir(), false)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.Error(t, j.Append(control.CommandEvent{Type: "core:move"}, 1))
	_, err = j.Recent(1)
	assert.Error(t, err)
}

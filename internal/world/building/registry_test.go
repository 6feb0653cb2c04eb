package building

import (
	"testing"

	"github.com/annel0/rts-forge/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	entry := &Entry{
		OcclusionMap: []vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}},
		Description:  "Тестовое здание",
	}
	r.Register("core:test", entry)

	got, ok := r.Get("core:test")
	assert.True(t, ok, "Здание должно находиться после регистрации")
	assert.Same(t, entry, got)

	_, ok = r.Get("core:missing")
	assert.False(t, ok, "Отсутствующая запись — ожидаемый промах, не ошибка")
}

func TestRegistry_OverwriteLastWins(t *testing.T) {
	r := NewRegistry()

	first := &Entry{Description: "первая"}
	second := &Entry{Description: "вторая"}

	r.Register("core:dup", first)
	r.Register("core:dup", second)

	got, ok := r.Get("core:dup")
	assert.True(t, ok)
	assert.Same(t, second, got, "При конфликте выигрывает последняя регистрация")
	assert.Len(t, r.IDs(), 1)
}

func TestRegistry_BuildCallback(t *testing.T) {
	r := NewRegistry()

	var builtAt *vec.Vec2
	entry := &Entry{
		OcclusionMap: []vec.Vec2{{X: 0, Y: 0}},
		Build: func(e *Entry, anchor vec.Vec2) {
			builtAt = &anchor
		},
	}
	r.Register("core:cb", entry)

	got, _ := r.Get("core:cb")
	got.Build(got, vec.Vec2{X: 7, Y: -3})

	assert.NotNil(t, builtAt, "Колбэк постройки должен вызываться вызывающей стороной")
	assert.Equal(t, vec.Vec2{X: 7, Y: -3}, *builtAt)
}

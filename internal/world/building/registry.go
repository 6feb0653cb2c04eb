package building

import (
	"sync"

	"github.com/annel0/rts-forge/internal/logging"
	"github.com/annel0/rts-forge/internal/vec"
)

// BuildFunc вызывается вызывающей стороной после успешного размещения.
// Карта и реестр колбэк не вызывают: занятость клеток и порождение
// визуального представления — разные задачи.
type BuildFunc func(entry *Entry, anchor vec.Vec2)

// Entry описывает один тип размещаемого здания.
type Entry struct {
	// OcclusionMap — смещения клеток относительно якоря; все должны быть
	// одновременно свободны при размещении.
	OcclusionMap []vec.Vec2
	// CursorOffset смещает курсор застройки, чтобы визуально центрировать
	// здание под указателем.
	CursorOffset vec.Vec2Float
	// SpriteHandle — непрозрачный токен презентационного слоя.
	// Ядро его никогда не интерпретирует.
	SpriteHandle string
	// Description — человекочитаемое описание (опционально).
	Description string
	// Build — колбэк постройки; вызывается с entry и якорной клеткой.
	Build BuildFunc
}

// Registry — каталог типов зданий по строковому идентификатору.
// Создаётся при старте и передаётся по ссылке; глобального состояния нет.
type Registry struct {
	mu        sync.RWMutex
	buildings map[string]*Entry
}

// NewRegistry создаёт пустой реестр зданий.
func NewRegistry() *Registry {
	return &Registry{
		buildings: make(map[string]*Entry),
	}
}

// Register добавляет или перезаписывает тип здания.
// Перезапись — не ошибка: последняя регистрация выигрывает, но логируется WARN.
func (r *Registry) Register(id string, entry *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.buildings[id]; exists {
		logging.Warn("⚠️  Здание '%s' уже зарегистрировано — запись перезаписана", id)
	} else {
		logging.Info("🏗️  Зарегистрировано здание '%s' (клеток: %d)", id, len(entry.OcclusionMap))
	}
	r.buildings[id] = entry
}

// Get возвращает запись здания. Отсутствие записи — ожидаемое условие
// (например, неверный хоткей), не ошибка.
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.buildings[id]
	return entry, exists
}

// IDs возвращает идентификаторы всех зарегистрированных зданий.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.buildings))
	for id := range r.buildings {
		ids = append(ids, id)
	}
	return ids
}

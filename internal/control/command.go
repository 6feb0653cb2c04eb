package control

import (
	"sync"

	"github.com/annel0/rts-forge/internal/logging"
	"github.com/annel0/rts-forge/internal/vec"
)

// InputMode говорит слою ввода, как собирать полезную нагрузку команды,
// прежде чем формировать CommandEvent.
type InputMode int

const (
	// InputImmediate — команда выполняется сразу, без цели.
	// Даёт событие без полезной нагрузки. Примеры: stop, hold position.
	InputImmediate InputMode = iota
	// InputImmediateSpatial — команда выполняется сразу по точке под курсором.
	// Даёт событие с точкой. Пример: move по правому клику.
	InputImmediateSpatial
	// InputSelectPoint — команда требует явного выбора точки на карте.
	InputSelectPoint
	// InputSelectEntity — команда требует выбора целевой сущности.
	InputSelectEntity
	// InputSelectPointOrEntity — допустимы обе цели.
	// Пример: attack-move.
	InputSelectPointOrEntity
)

// String возвращает строковое представление режима ввода.
func (m InputMode) String() string {
	switch m {
	case InputImmediate:
		return "immediate"
	case InputImmediateSpatial:
		return "immediate_spatial"
	case InputSelectPoint:
		return "select_point"
	case InputSelectEntity:
		return "select_entity"
	case InputSelectPointOrEntity:
		return "select_point_or_entity"
	default:
		return "unknown"
	}
}

// CommandEvent — команда с полезной нагрузкой. Заполнено не более одного
// из опциональных полей; оба nil для команд без цели.
type CommandEvent struct {
	Type   string         `json:"type"`
	Point  *vec.Vec2Float `json:"point,omitempty"`
	Entity *uint64        `json:"entity,omitempty"`
}

// Clone возвращает независимую копию события: каждый диспетчер получает
// свою копию и не может повлиять на остальных.
func (ev CommandEvent) Clone() CommandEvent {
	clone := CommandEvent{Type: ev.Type}
	if ev.Point != nil {
		p := *ev.Point
		clone.Point = &p
	}
	if ev.Entity != nil {
		e := *ev.Entity
		clone.Entity = &e
	}
	return clone
}

// CommandEntry связывает идентификатор команды с режимом ввода.
type CommandEntry struct {
	Type      string
	InputMode InputMode
}

// CommandRegistry — каталог поведений команд: как интерпретировать
// пользовательский ввод для каждого идентификатора.
type CommandRegistry struct {
	mu        sync.RWMutex
	behaviors map[string]CommandEntry
}

// NewCommandRegistry создаёт пустой реестр команд.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		behaviors: make(map[string]CommandEntry),
	}
}

// Register добавляет или перезаписывает поведение команды.
// Конфликт — WARN, не ошибка: последняя запись выигрывает.
func (r *CommandRegistry) Register(entry CommandEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.behaviors[entry.Type]; exists {
		logging.Warn("⚠️  Поведение команды '%s' перезаписано: %s -> %s",
			entry.Type, old.InputMode, entry.InputMode)
	}
	r.behaviors[entry.Type] = entry
}

// Get возвращает поведение команды; промах — ожидаемое условие.
func (r *CommandRegistry) Get(commandType string) (CommandEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.behaviors[commandType]
	return entry, exists
}

// Types возвращает идентификаторы всех зарегистрированных команд.
func (r *CommandRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.behaviors))
	for t := range r.behaviors {
		types = append(types, t)
	}
	return types
}

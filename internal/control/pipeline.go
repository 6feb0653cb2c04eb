package control

import (
	"sync"

	"github.com/annel0/rts-forge/internal/logging"
)

// Dispatcher заявляет интерес к идентификаторам команд и исполняет
// совпавшие события.
type Dispatcher interface {
	// Name — имя диспетчера для логов и журнала.
	Name() string
	// Catches сообщает, обрабатывает ли диспетчер команду данного типа.
	Catches(commandType string) bool
	// Dispatch исполняет событие. Каждый диспетчер получает собственную
	// копию и не может отменить исполнение у остальных.
	Dispatch(ev CommandEvent)
}

// DispatcherFunc собирает диспетчер из списка типов и замыкания.
type DispatcherFunc struct {
	DispatcherName string
	Types          []string
	Fn             func(ev CommandEvent)
}

// Name возвращает имя диспетчера.
func (d *DispatcherFunc) Name() string { return d.DispatcherName }

// Catches проверяет тип команды по списку.
func (d *DispatcherFunc) Catches(commandType string) bool {
	for _, t := range d.Types {
		if t == commandType {
			return true
		}
	}
	return false
}

// Dispatch вызывает замыкание.
func (d *DispatcherFunc) Dispatch(ev CommandEvent) { d.Fn(ev) }

// Pipeline — упорядоченный список диспетчеров. Исполняются ВСЕ совпавшие
// диспетчеры в порядке регистрации (fan-out, не first-match); примитива
// отмены нет.
type Pipeline struct {
	mu          sync.RWMutex
	dispatchers []Dispatcher
}

// NewPipeline создаёт пустой конвейер.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Register добавляет диспетчер в конец списка.
func (p *Pipeline) Register(d Dispatcher) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dispatchers = append(p.dispatchers, d)
	logging.Info("🎮 Зарегистрирован диспетчер команд: %s", d.Name())
}

// Dispatch прогоняет событие через все диспетчеры в порядке регистрации
// и возвращает число сработавших. Ноль означает, что команду никто не
// обработал — вызывающий решает, логировать ли это.
func (p *Pipeline) Dispatch(ev CommandEvent) int {
	p.mu.RLock()
	dispatchers := make([]Dispatcher, len(p.dispatchers))
	copy(dispatchers, p.dispatchers)
	p.mu.RUnlock()

	handled := 0
	for _, d := range dispatchers {
		if d.Catches(ev.Type) {
			d.Dispatch(ev.Clone())
			handled++
		}
	}
	return handled
}

// Len возвращает число зарегистрированных диспетчеров.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.dispatchers)
}

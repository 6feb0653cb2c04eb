package game

import (
	"context"

	"github.com/annel0/rts-forge/internal/control"
	"github.com/annel0/rts-forge/internal/eventbus"
	"github.com/annel0/rts-forge/internal/journal"
	"github.com/annel0/rts-forge/internal/logging"
)

// CommandService прогоняет события команд через конвейер и фиксирует
// каждую попытку в журнале. Команда либо исполняется, либо явно видна
// как необработанная: ноль совпавших диспетчеров логируется.
type CommandService struct {
	pipeline *control.Pipeline
	journal  *journal.CommandJournal
	bus      eventbus.EventBus
}

// NewCommandService создаёт сервис команд. Журнал опционален (nil — без записи).
func NewCommandService(pipeline *control.Pipeline, j *journal.CommandJournal, bus eventbus.EventBus) *CommandService {
	return &CommandService{
		pipeline: pipeline,
		journal:  j,
		bus:      bus,
	}
}

// Dispatch исполняет событие всеми совпавшими диспетчерами и возвращает
// их число. Запись в журнал и событие шины — побочные эффекты: их ошибки
// не влияют на исход команды.
func (s *CommandService) Dispatch(ctx context.Context, ev control.CommandEvent) int {
	handled := s.pipeline.Dispatch(ev)

	if handled == 0 {
		logging.Warn("⚠️  Команда '%s' не обработана ни одним диспетчером", ev.Type)
	}

	if s.journal != nil {
		if err := s.journal.Append(ev, handled); err != nil {
			logging.Warn("Не удалось записать команду в журнал: %v", err)
		}
	}

	if s.bus != nil {
		payload := struct {
			Type    string `json:"type"`
			Handled int    `json:"handled"`
		}{Type: ev.Type, Handled: handled}
		if err := eventbus.PublishEvent(ctx, s.bus, "control", eventbus.EventTypeCommand, payload); err != nil {
			logging.Warn("Не удалось опубликовать событие команды: %v", err)
		}
	}

	return handled
}

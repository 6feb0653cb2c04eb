package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы событий ядра.
const (
	// EventTypeToast — человекочитаемое сообщение для игрока
	// (результат размещения, загрузка чанка и т.п.).
	EventTypeToast = "toast"
	// EventTypeCommand — факт прохождения команды через конвейер.
	EventTypeCommand = "command_dispatched"
	// EventTypeChunkLoaded — материализация чанка карты.
	EventTypeChunkLoaded = "chunk_loaded"
)

// Toast — полезная нагрузка toast-события. Формат и доставка конечного
// уведомления — забота презентационного слоя; ядро отдаёт только текст.
type Toast struct {
	Content string `json:"content"`
}

// PublishToast отправляет toast-сообщение в шину. Ошибки публикации не
// фатальны для игровой логики: уведомление — побочный эффект.
func PublishToast(ctx context.Context, bus EventBus, source, content string) error {
	payload, err := json.Marshal(Toast{Content: content})
	if err != nil {
		return err
	}

	return bus.Publish(ctx, &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: EventTypeToast,
		Version:   1,
		Priority:  3,
		Payload:   payload,
	})
}

// ToastFromEnvelope извлекает toast из конверта.
func ToastFromEnvelope(ev *Envelope) (*Toast, error) {
	var toast Toast
	if err := json.Unmarshal(ev.Payload, &toast); err != nil {
		return nil, err
	}
	return &toast, nil
}

// PublishEvent — общий помощник для событий ядра с JSON-нагрузкой.
func PublishEvent(ctx context.Context, bus EventBus, source, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return bus.Publish(ctx, &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Priority:  3,
		Payload:   data,
	})
}

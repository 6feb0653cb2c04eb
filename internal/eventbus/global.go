package eventbus

import "context"

var globalBus EventBus

// Init устанавливает глобальную шину. Вызывается один раз при старте.
func Init(bus EventBus) { globalBus = bus }

// Global возвращает глобальную шину (nil до Init).
func Global() EventBus { return globalBus }

// Publish отправляет событие в глобальную шину, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	if globalBus == nil {
		return nil
	}
	return globalBus.Publish(ctx, ev)
}

package eventbus

import (
	"context"

	"github.com/annel0/rts-forge/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в стандартный лог.
// Toast-события дополнительно печатаются на уровне INFO: это пользовательские
// сообщения, и в headless-режиме консоль — их единственный адресат.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) error {
	_, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if ev.EventType == EventTypeToast {
			if toast, err := ToastFromEnvelope(ev); err == nil {
				logging.Info("🔔 TOAST: %s", toast.Content)
				return
			}
		}
		logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return nil
}

package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	received := make(chan *Envelope, 1)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventTypeToast}},
		func(ctx context.Context, ev *Envelope) {
			received <- ev
		})
	require.NoError(t, err)

	require.NoError(t, PublishToast(context.Background(), bus, "test", "Привет"))

	select {
	case ev := <-received:
		assert.Equal(t, EventTypeToast, ev.EventType)
		assert.Equal(t, "test", ev.Source)
		assert.NotEmpty(t, ev.ID, "Событие должно получить UUID")

		toast, err := ToastFromEnvelope(ev)
		require.NoError(t, err)
		assert.Equal(t, "Привет", toast.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("Событие не доставлено подписчику")
	}
}

func TestMemoryBus_FilterByType(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	toasts := make(chan *Envelope, 4)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventTypeToast}},
		func(ctx context.Context, ev *Envelope) {
			toasts <- ev
		})
	require.NoError(t, err)

	// Событие другого типа фильтр пропустить не должен
	require.NoError(t, PublishEvent(context.Background(), bus, "world", EventTypeChunkLoaded,
		map[string]int{"x": 0, "y": 0}))
	require.NoError(t, PublishToast(context.Background(), bus, "world", "только это"))

	select {
	case ev := <-toasts:
		assert.Equal(t, EventTypeToast, ev.EventType)
	case <-time.After(2 * time.Second):
		t.Fatal("Toast не доставлен")
	}

	select {
	case ev := <-toasts:
		t.Fatalf("Лишнее событие прошло фильтр: %s", ev.EventType)
	case <-time.After(100 * time.Millisecond):
		// ожидаемо пусто
	}
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	received := make(chan *Envelope, 4)
	sub, err := bus.Subscribe(context.Background(), Filter{},
		func(ctx context.Context, ev *Envelope) {
			received <- ev
		})
	require.NoError(t, err)

	sub.Unsubscribe()
	require.NoError(t, PublishToast(context.Background(), bus, "test", "после отписки"))

	select {
	case <-received:
		t.Fatal("Отписанный обработчик не должен получать события")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestMemoryBus_Close(t *testing.T) {
	bus := NewMemoryBus(16)

	received := make(chan *Envelope, 4)
	_, err := bus.Subscribe(context.Background(), Filter{},
		func(ctx context.Context, ev *Envelope) {
			received <- ev
		})
	require.NoError(t, err)

	bus.Close()
	bus.Close() // повторный Close безопасен

	err = PublishToast(context.Background(), bus, "test", "после остановки")
	assert.ErrorIs(t, err, ErrBusClosed, "Публикация в остановленную шину должна возвращать ошибку")

	select {
	case <-received:
		t.Fatal("Остановленная шина не должна доставлять события")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestMemoryBus_Stats(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	require.NoError(t, PublishToast(context.Background(), bus, "test", "раз"))
	require.NoError(t, PublishToast(context.Background(), bus, "test", "два"))

	assert.Eventually(t, func() bool {
		return bus.Metrics().Published == 2
	}, 2*time.Second, 10*time.Millisecond, "Счётчик публикаций должен дойти до 2")
}

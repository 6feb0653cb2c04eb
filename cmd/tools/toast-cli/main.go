package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/annel0/rts-forge/internal/eventbus"
)

const defaultNatsURL = "nats://127.0.0.1:4222"

// toast-cli подписывается на события игрового сервера через NATS JetStream
// и печатает их в консоль. Режим по умолчанию — только toast-сообщения
// (tail -f для уведомлений игрока).
func main() {
	var (
		natsURL   = flag.String("nats", defaultNatsURL, "адрес NATS сервера")
		stream    = flag.String("stream", "FORGE", "имя JetStream стрима")
		eventType = flag.String("type", eventbus.EventTypeToast, "тип событий (toast, command_dispatched, chunk_loaded, all)")
		raw       = flag.Bool("raw", false, "печатать конверт целиком в JSON")
	)
	flag.Parse()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к NATS: %v", err)
	}
	defer nc.Drain()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("❌ JetStream недоступен: %v", err)
	}

	subj := "events.*"
	if *eventType != "all" {
		subj = fmt.Sprintf("events.%s", *eventType)
	}

	sub, err := js.Subscribe(subj, func(msg *nats.Msg) {
		printEnvelope(msg.Data, *raw)
		_ = msg.Ack()
	}, nats.ManualAck(), nats.BindStream(*stream), nats.DeliverNew())
	if err != nil {
		log.Fatalf("❌ Подписка не удалась: %v", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	fmt.Printf("🔔 Слушаем %s (стрим %s, NATS %s). Ctrl+C для выхода.\n", subj, *stream, *natsURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println("\n👋 Завершение")
}

// printEnvelope печатает событие в читаемом виде.
func printEnvelope(data []byte, raw bool) {
	var ev eventbus.Envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		fmt.Printf("⚠️  Нечитаемое событие: %v\n", err)
		return
	}

	if raw {
		pretty, _ := json.MarshalIndent(ev, "", "  ")
		fmt.Println(string(pretty))
		return
	}

	ts := ev.Timestamp.Local().Format(time.TimeOnly)

	if ev.EventType == eventbus.EventTypeToast {
		if toast, err := eventbus.ToastFromEnvelope(&ev); err == nil {
			fmt.Printf("[%s] 🔔 %s\n", ts, toast.Content)
			return
		}
	}

	payload := strings.TrimSpace(string(ev.Payload))
	fmt.Printf("[%s] %s src=%s %s\n", ts, ev.EventType, ev.Source, payload)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/rts-forge/internal/api"
	"github.com/annel0/rts-forge/internal/auth"
	"github.com/annel0/rts-forge/internal/config"
	"github.com/annel0/rts-forge/internal/control"
	"github.com/annel0/rts-forge/internal/eventbus"
	"github.com/annel0/rts-forge/internal/game"
	"github.com/annel0/rts-forge/internal/journal"
	"github.com/annel0/rts-forge/internal/logging"
	"github.com/annel0/rts-forge/internal/observability"
	"github.com/annel0/rts-forge/internal/world"
	"github.com/annel0/rts-forge/internal/world/building"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или ENV FORGE_CONFIG)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll() // компонентные логгеры (api и др.)

	logging.Info("🎮 Запуск RTS Forge Server...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
		logging.Info("⚙️  Конфигурация не задана — используются значения по умолчанию")
	}

	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	metricsPort := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	logging.Info("📡 Конфигурация сервера: REST API=%s, метрики=%s", restPort, metricsPort)

	ctx := context.Background()

	// === OBSERVABILITY ===
	telemetryShutdown, err := observability.InitTelemetry(ctx, "rts-forge")
	if err != nil {
		// Отсутствие OTLP-коллектора не мешает игровой логике
		logging.Warn("⚠️  OpenTelemetry недоступен: %v", err)
		telemetryShutdown = func(context.Context) error { return nil }
	}

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		jetBus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream,
			time.Duration(cfg.EventBus.Retention)*time.Hour)
		if err != nil {
			logging.Error("❌ Ошибка подключения к NATS: %v", err)
			log.Fatalf("❌ Ошибка подключения к NATS: %v", err)
		}
		bus = jetBus
		logging.Info("📨 Шина событий: NATS JetStream (%s)", cfg.EventBus.URL)
	} else {
		bus = eventbus.NewMemoryBus(1024)
		logging.Info("📨 Шина событий: in-memory")
	}
	eventbus.Init(bus)

	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️  Не удалось запустить логирование событий: %v", err)
	}

	metricsExporter := eventbus.NewMetricsExporter(bus)
	metricsExporter.StartHTTP(metricsPort)

	// === МИР ===
	logging.Debug("Создание карты и предгенерация чанков...")
	worldMap := world.NewMap()
	generator := world.NewObstacleGenerator(cfg.World.GetSeed(), cfg.World.ObstacleDensity)
	game.PregenerateMap(ctx, worldMap, generator, bus, cfg.World.GetPregenRadius())

	// === КОНТЕНТ ===
	buildings := building.NewRegistry()
	commands := control.NewCommandRegistry()
	panels := control.NewPanelRegistry()
	pipeline := control.NewPipeline()
	game.RegisterDefaults(buildings, commands, panels, pipeline)

	// === ЖУРНАЛ КОМАНД ===
	cmdJournal, err := journal.NewCommandJournal(cfg.Journal.GetPath(), cfg.Journal.Compress)
	if err != nil {
		logging.Error("❌ Ошибка открытия журнала команд: %v", err)
		log.Fatalf("❌ Ошибка открытия журнала команд: %v", err)
	}

	// === СЕРВИСЫ ===
	placer := game.NewPlacer(worldMap, buildings, bus)
	commander := game.NewCommandService(pipeline, cmdJournal, bus)

	// === ХРАНИЛИЩЕ ПОЛЬЗОВАТЕЛЕЙ ===
	var userRepo auth.UserRepository
	if cfg.Auth.UseMariaDB {
		mariaRepo, err := auth.NewMariaUserRepo(auth.MariaConfig{
			Host:     cfg.Auth.Host,
			Port:     cfg.Auth.Port,
			Database: cfg.Auth.Database,
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		})
		if err != nil {
			logging.Error("❌ Ошибка подключения к MariaDB: %v", err)
			log.Fatalf("❌ Ошибка подключения к MariaDB: %v", err)
		}
		defer mariaRepo.Close()
		userRepo = mariaRepo
		logging.Info("🗄️  Хранилище пользователей: MariaDB (%s:%d)", cfg.Auth.Host, cfg.Auth.Port)
	} else {
		memRepo, err := auth.NewMemoryUserRepo()
		if err != nil {
			logging.Error("❌ Ошибка создания in-memory репозитория: %v", err)
			log.Fatalf("❌ Ошибка создания in-memory репозитория: %v", err)
		}
		userRepo = memRepo
		logging.Info("🗄️  Хранилище пользователей: in-memory")
	}

	// === REST API ===
	restServer := api.NewRestServer(api.Config{
		Port:      restPort,
		UserRepo:  userRepo,
		WorldMap:  worldMap,
		Generator: generator,
		Buildings: buildings,
		Commands:  commands,
		Panels:    panels,
		Placer:    placer,
		Commander: commander,
		Journal:   cmdJournal,
	})

	go func() {
		if err := restServer.Start(); err != nil {
			logging.Error("❌ REST API остановлен с ошибкой: %v", err)
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   📊 Метрики шины: http://localhost%s/metrics", metricsPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("💡 Пример входа:")
	logging.Info("   curl -X POST http://localhost%s/api/auth/login -H 'Content-Type: application/json' -d '{\"username\":\"test\",\"password\":\"test\"}'", restPort)

	// Ждем сигнала для завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	metricsExporter.Stop()

	if err := cmdJournal.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия журнала: %v", err)
	}

	bus.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetryShutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	EventBus EventBusConfig `yaml:"eventbus"`
	World    WorldConfig    `yaml:"world"`
	Journal  JournalConfig  `yaml:"journal"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

// WorldConfig описывает параметры стартовой карты.
type WorldConfig struct {
	Seed int64 `yaml:"seed"`
	// PregenRadius — радиус (в чанках) предсоздаваемой области вокруг начала
	// координат. Радиус 2 даёт квадрат чанков от -2 до 1 включительно.
	PregenRadius int `yaml:"pregen_radius"`
	// ObstacleDensity — доля клеток, занятых природными препятствиями (0..1).
	ObstacleDensity float64 `yaml:"obstacle_density"`
}

// JournalConfig настраивает журнал команд на BadgerDB.
type JournalConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

// AuthConfig выбирает хранилище пользователей.
type AuthConfig struct {
	UseMariaDB bool   `yaml:"use_mariadb"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Database   string `yaml:"database"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "FORGE_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "FORGE_METRICS_PORT", 2112)
}

// GetSeed возвращает сид мира; 0 в конфиге означает сид по умолчанию.
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != 0 {
		return w.Seed
	}
	return 12345
}

// GetPregenRadius возвращает радиус предгенерации (минимум 1 чанк).
func (w *WorldConfig) GetPregenRadius() int {
	if w.PregenRadius > 0 {
		return w.PregenRadius
	}
	return 2
}

// GetPath возвращает путь журнала команд с дефолтом data/journal.
func (j *JournalConfig) GetPath() string {
	if j.Path != "" {
		return j.Path
	}
	return "data/journal"
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV FORGE_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("FORGE_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FullConfig(t *testing.T) {
	yamlData := `
server:
  rest_port: 9001
  metrics_port: 9002
eventbus:
  url: nats://127.0.0.1:4222
  stream: FORGE
  retention_hours: 24
world:
  seed: 777
  pregen_radius: 3
  obstacle_density: 0.1
journal:
  path: /tmp/forge-journal
  compress: true
auth:
  use_mariadb: true
  host: db.local
  port: 3306
  database: forge
  username: forge
  password: secret
`

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9001, cfg.Server.GetRESTPort())
	assert.Equal(t, 9002, cfg.Server.GetMetricsPort())
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.EventBus.URL)
	assert.Equal(t, "FORGE", cfg.EventBus.Stream)
	assert.Equal(t, int64(777), cfg.World.GetSeed())
	assert.Equal(t, 3, cfg.World.GetPregenRadius())
	assert.Equal(t, "/tmp/forge-journal", cfg.Journal.GetPath())
	assert.True(t, cfg.Journal.Compress)
	assert.True(t, cfg.Auth.UseMariaDB)
}

func TestLoad_NoConfig(t *testing.T) {
	// Без пути и без FORGE_CONFIG — дефолты (nil, nil)
	t.Setenv("FORGE_CONFIG", "")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestServerConfig_EnvFallback(t *testing.T) {
	t.Setenv("FORGE_REST_PORT", "9999")

	s := ServerConfig{}
	assert.Equal(t, 9999, s.GetRESTPort(), "Порт должен браться из переменной окружения")

	s.RESTPort = 8100
	assert.Equal(t, 8100, s.GetRESTPort(), "Конфиг имеет приоритет над окружением")
}

func TestDefaults(t *testing.T) {
	t.Setenv("FORGE_REST_PORT", "")
	t.Setenv("FORGE_METRICS_PORT", "")

	var cfg Config
	assert.Equal(t, 8088, cfg.Server.GetRESTPort())
	assert.Equal(t, 2112, cfg.Server.GetMetricsPort())
	assert.Equal(t, int64(12345), cfg.World.GetSeed())
	assert.Equal(t, 2, cfg.World.GetPregenRadius())
	assert.Equal(t, "data/journal", cfg.Journal.GetPath())
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/rts-forge/internal/auth"
	"github.com/annel0/rts-forge/internal/control"
	"github.com/annel0/rts-forge/internal/game"
	"github.com/annel0/rts-forge/internal/vec"
	"github.com/annel0/rts-forge/internal/world"
	"github.com/annel0/rts-forge/internal/world/building"
)

// Один сервер на весь пакет: Prometheus-метрики регистрируются в
// глобальном регистре и повторная инициализация приводит к панике.
func TestRestAPI(t *testing.T) {
	repo, err := auth.NewMemoryUserRepo()
	require.NoError(t, err)

	worldMap := world.NewMap()
	for x := -1; x < 1; x++ {
		for y := -1; y < 1; y++ {
			worldMap.CreateChunk(vec.Vec2{X: x, Y: y})
		}
	}

	buildings := building.NewRegistry()
	commands := control.NewCommandRegistry()
	panels := control.NewPanelRegistry()
	pipeline := control.NewPipeline()
	game.RegisterDefaults(buildings, commands, panels, pipeline)

	// Команды с другими режимами прицеливания для проверки валидации
	commands.Register(control.CommandEntry{Type: "test:repair", InputMode: control.InputSelectEntity})
	commands.Register(control.CommandEntry{Type: "test:attack", InputMode: control.InputSelectPointOrEntity})

	server := NewRestServer(Config{
		Port:      ":0",
		UserRepo:  repo,
		WorldMap:  worldMap,
		Buildings: buildings,
		Commands:  commands,
		Panels:    panels,
		Placer:    game.NewPlacer(worldMap, buildings, nil),
		Commander: game.NewCommandService(pipeline, nil, nil),
	})
	router := server.Router()

	doJSON := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	login := func(username, password string) (string, int) {
		rec := doJSON(http.MethodPost, "/api/auth/login", "", LoginRequest{
			Username: username,
			Password: password,
		})
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Token, rec.Code
	}

	var userToken, adminToken string

	t.Run("health", func(t *testing.T) {
		rec := doJSON(http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		token, code := login("test", "test")
		require.Equal(t, http.StatusOK, code)
		require.NotEmpty(t, token, "Успешный вход должен вернуть токен")
		userToken = token

		token, code = login("admin", "admin")
		require.Equal(t, http.StatusOK, code)
		adminToken = token

		_, code = login("test", "wrong")
		assert.Equal(t, http.StatusUnauthorized, code, "Неверный пароль должен отклоняться")
	})

	t.Run("unauthorized", func(t *testing.T) {
		rec := doJSON(http.MethodGet, "/api/stats", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "Без токена доступ закрыт")

		rec = doJSON(http.MethodGet, "/api/stats", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cell state", func(t *testing.T) {
		rec := doJSON(http.MethodGet, "/api/map/cell?x=3&y=3", userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "free")

		// Чанк (5,5) не загружен
		rec = doJSON(http.MethodGet, "/api/map/cell?x=85&y=85", userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown")

		rec = doJSON(http.MethodGet, "/api/map/cell?x=abc&y=1", userToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("place building", func(t *testing.T) {
		place := PlaceRequest{BuildingID: game.BarracksID, X: 2, Y: 2}
		rec := doJSON(http.MethodPost, "/api/place", userToken, place)
		require.Equal(t, http.StatusOK, rec.Code, "Тело ответа: %s", rec.Body.String())

		// Повторное размещение по тем же клеткам отклоняется
		rec = doJSON(http.MethodPost, "/api/place", userToken, place)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "occupied")

		rec = doJSON(http.MethodPost, "/api/place", userToken,
			PlaceRequest{BuildingID: "core:missing", X: 0, Y: 0})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("dispatch command", func(t *testing.T) {
		point := [2]float64{10, 12}
		rec := doJSON(http.MethodPost, "/api/command", userToken, CommandRequest{
			Type:  game.MoveCommandID,
			Point: &point,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"handled":1`)

		// core:move требует точку
		rec = doJSON(http.MethodPost, "/api/command", userToken, CommandRequest{
			Type: game.MoveCommandID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doJSON(http.MethodPost, "/api/command", userToken, CommandRequest{
			Type: "core:missing",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("dispatch command targeting modes", func(t *testing.T) {
		// test:repair требует сущность
		rec := doJSON(http.MethodPost, "/api/command", userToken, CommandRequest{
			Type: "test:repair",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "Команда без сущности должна отклоняться")

		entity := uint64(42)
		rec = doJSON(http.MethodPost, "/api/command", userToken, CommandRequest{
			Type:   "test:repair",
			Entity: &entity,
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		// test:attack принимает точку или сущность, но не пустой запрос
		rec = doJSON(http.MethodPost, "/api/command", userToken, CommandRequest{
			Type: "test:attack",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		point := [2]float64{1, 2}
		rec = doJSON(http.MethodPost, "/api/command", userToken, CommandRequest{
			Type:  "test:attack",
			Point: &point,
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("catalogs", func(t *testing.T) {
		rec := doJSON(http.MethodGet, "/api/catalog/buildings", userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), game.BarracksID)

		rec = doJSON(http.MethodGet, "/api/catalog/commands", userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), game.MoveCommandID)

		rec = doJSON(http.MethodGet, "/api/catalog/panels", userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), game.WorkerEntityType)
	})

	t.Run("admin chunk create", func(t *testing.T) {
		// Обычный пользователь не может создавать чанки
		rec := doJSON(http.MethodPost, "/api/admin/chunks", userToken, ChunkRequest{X: 7, Y: 7})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = doJSON(http.MethodPost, "/api/admin/chunks", adminToken, ChunkRequest{X: 7, Y: 7})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(http.MethodPost, "/api/admin/chunks", adminToken, ChunkRequest{X: 7, Y: 7})
		assert.Equal(t, http.StatusConflict, rec.Code, "Повторное создание чанка отклоняется")
	})

	t.Run("admin chunk create concurrent", func(t *testing.T) {
		// Одновременные запросы на одни координаты: ровно один 201,
		// остальные 409, без паники в обработчике
		const workers = 8
		start := make(chan struct{})
		codes := make(chan int, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				rec := doJSON(http.MethodPost, "/api/admin/chunks", adminToken, ChunkRequest{X: 8, Y: 8})
				codes <- rec.Code
			}()
		}
		close(start)
		wg.Wait()
		close(codes)

		created, conflicts := 0, 0
		for code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicts++
			default:
				t.Fatalf("Неожиданный статус: %d", code)
			}
		}
		assert.Equal(t, 1, created, "Чанк должен создаться ровно один раз")
		assert.Equal(t, workers-1, conflicts)
	})

	t.Run("admin register", func(t *testing.T) {
		rec := doJSON(http.MethodPost, "/api/admin/register", adminToken, RegisterRequest{
			Username: "builder",
			Password: "secret123",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		token, code := login("builder", "secret123")
		assert.Equal(t, http.StatusOK, code)
		assert.NotEmpty(t, token)
	})

	t.Run("journal disabled", func(t *testing.T) {
		rec := doJSON(http.MethodGet, fmt.Sprintf("/api/journal/recent?limit=%d", 5), userToken, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "Журнал отключен — 503")
	})
}

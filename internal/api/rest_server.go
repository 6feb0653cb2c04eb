package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/rts-forge/internal/auth"
	"github.com/annel0/rts-forge/internal/control"
	"github.com/annel0/rts-forge/internal/game"
	"github.com/annel0/rts-forge/internal/journal"
	"github.com/annel0/rts-forge/internal/middleware"
	"github.com/annel0/rts-forge/internal/vec"
	"github.com/annel0/rts-forge/internal/world"
	"github.com/annel0/rts-forge/internal/world/building"
)

// RestServer представляет REST API сервер.
type RestServer struct {
	router    *gin.Engine
	userRepo  auth.UserRepository
	worldMap  *world.Map
	generator *world.ObstacleGenerator
	buildings *building.Registry
	commands  *control.CommandRegistry
	panels    *control.PanelRegistry
	placer    *game.Placer
	commander *game.CommandService
	journal   *journal.CommandJournal
	port      string
	metrics   *ServerMetrics
}

// Config содержит зависимости REST сервера.
type Config struct {
	Port      string
	UserRepo  auth.UserRepository
	WorldMap  *world.Map
	Generator *world.ObstacleGenerator
	Buildings *building.Registry
	Commands  *control.CommandRegistry
	Panels    *control.PanelRegistry
	Placer    *game.Placer
	Commander *game.CommandService
	Journal   *journal.CommandJournal
}

// NewRestServer создает новый REST API сервер.
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("rest_api"))

	promMw := middleware.NewPrometheusMiddleware("rest_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:    router,
		userRepo:  config.UserRepo,
		worldMap:  config.WorldMap,
		generator: config.Generator,
		buildings: config.Buildings,
		commands:  config.Commands,
		panels:    config.Panels,
		placer:    config.Placer,
		commander: config.Commander,
		journal:   config.Journal,
		port:      config.Port,
		metrics:   NewServerMetrics(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API.
func (rs *RestServer) setupRoutes() {
	// CORS для веб-клиентов
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")

	// Аутентификация (без JWT защиты)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", rs.handleLogin)
	}

	// Защищенные эндпоинты (требуют JWT)
	protected := api.Group("/")
	protected.Use(rs.jwtMiddleware())
	{
		protected.GET("/stats", rs.handleStats)
		protected.GET("/server", rs.handleServerInfo)

		// Карта
		protected.GET("/map/cell", rs.handleCellState)
		protected.GET("/map/chunks", rs.handleListChunks)

		// Игровые действия
		protected.POST("/place", rs.handlePlaceBuilding)
		protected.POST("/command", rs.handleDispatchCommand)

		// Каталоги контента
		protected.GET("/catalog/buildings", rs.handleListBuildings)
		protected.GET("/catalog/commands", rs.handleListCommands)
		protected.GET("/catalog/panels", rs.handleListPanels)

		// Журнал команд
		protected.GET("/journal/recent", rs.handleJournalRecent)

		// Административные эндпоинты
		admin := protected.Group("/admin")
		admin.Use(rs.adminMiddleware())
		{
			admin.POST("/register", rs.handleAdminRegister)
			admin.POST("/chunks", rs.handleCreateChunk)
		}
	}

	rs.router.GET("/health", rs.handleHealth)
}

// LoginRequest представляет запрос на вход.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse представляет ответ на вход.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
	UserID  uint64 `json:"user_id,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

// RegisterRequest представляет запрос на регистрацию.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// GenericResponse представляет общий ответ API.
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// handleLogin обрабатывает запрос на вход.
func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	user, err := rs.userRepo.ValidateCredentials(req.Username, req.Password)
	if err == auth.ErrInvalidCredentials {
		c.JSON(http.StatusUnauthorized, LoginResponse{
			Success: false,
			Message: "Неверное имя пользователя или пароль",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, LoginResponse{
			Success: false,
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, LoginResponse{
			Success: false,
			Message: "Ошибка генерации токена",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		Message: "Успешная авторизация",
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	})
}

// handleAdminRegister обрабатывает регистрацию нового пользователя (только для админов).
func (rs *RestServer) handleAdminRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	if len(req.Username) < 3 || len(req.Username) > 30 {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Имя пользователя должно быть от 3 до 30 символов",
		})
		return
	}

	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Пароль должен быть минимум 6 символов",
		})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Ошибка обработки пароля",
		})
		return
	}

	user, err := rs.userRepo.CreateUser(req.Username, passwordHash, req.IsAdmin)
	if err == auth.ErrUserExists {
		c.JSON(http.StatusConflict, GenericResponse{
			Success: false,
			Message: "Пользователь уже существует",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Ошибка создания пользователя",
		})
		return
	}

	c.JSON(http.StatusCreated, GenericResponse{
		Success: true,
		Message: "Пользователь успешно создан",
		Data: map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
			"is_admin": user.IsAdmin,
		},
	})
}

// handleCellState возвращает состояние клетки по глобальным координатам.
func (rs *RestServer) handleCellState(c *gin.Context) {
	x, errX := strconv.Atoi(c.Query("x"))
	y, errY := strconv.Atoi(c.Query("y"))
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Параметры x и y обязательны и должны быть целыми числами",
		})
		return
	}

	cell := vec.Vec2{X: x, Y: y}
	state := rs.worldMap.CellAtGlobal(cell)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние клетки",
		Data: map[string]interface{}{
			"cell":  map[string]int{"x": x, "y": y},
			"chunk": map[string]int{"x": cell.ToChunkCoords().X, "y": cell.ToChunkCoords().Y},
			"state": state.String(),
		},
	})
}

// handleListChunks возвращает координаты загруженных чанков.
func (rs *RestServer) handleListChunks(c *gin.Context) {
	coords := rs.worldMap.ChunkCoords()

	chunks := make([]map[string]int, 0, len(coords))
	for _, pos := range coords {
		chunks = append(chunks, map[string]int{"x": pos.X, "y": pos.Y})
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Загруженные чанки",
		Data: map[string]interface{}{
			"chunks": chunks,
			"total":  len(chunks),
		},
	})
}

// PlaceRequest представляет запрос на размещение здания.
type PlaceRequest struct {
	BuildingID string `json:"building_id" binding:"required"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

// handlePlaceBuilding размещает здание по якорной клетке.
func (rs *RestServer) handlePlaceBuilding(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	anchor := vec.Vec2{X: req.X, Y: req.Y}
	status, err := rs.placer.PlaceBuilding(c.Request.Context(), req.BuildingID, anchor)
	if err != nil {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Здание '%s' не зарегистрировано", req.BuildingID),
		})
		return
	}

	httpStatus := http.StatusOK
	if !status.Ok() {
		httpStatus = http.StatusConflict
	}

	c.JSON(httpStatus, GenericResponse{
		Success: status.Ok(),
		Message: "Результат размещения",
		Data: map[string]interface{}{
			"building_id": req.BuildingID,
			"anchor":      map[string]int{"x": req.X, "y": req.Y},
			"status":      status.String(),
		},
	})
}

// CommandRequest представляет запрос на исполнение команды.
type CommandRequest struct {
	Type   string      `json:"type" binding:"required"`
	Point  *[2]float64 `json:"point,omitempty"`
	Entity *uint64     `json:"entity,omitempty"`
}

// handleDispatchCommand прогоняет команду через конвейер диспетчеров.
func (rs *RestServer) handleDispatchCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	entry, known := rs.commands.Get(req.Type)
	if !known {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Команда '%s' не зарегистрирована", req.Type),
		})
		return
	}

	ev := control.CommandEvent{Type: req.Type, Entity: req.Entity}
	if req.Point != nil {
		ev.Point = &vec.Vec2Float{X: req.Point[0], Y: req.Point[1]}
	}

	// Режим ввода команды определяет обязательную цель в запросе
	var missing string
	switch entry.InputMode {
	case control.InputSelectPoint:
		if ev.Point == nil {
			missing = "point"
		}
	case control.InputSelectEntity:
		if ev.Entity == nil {
			missing = "entity"
		}
	case control.InputSelectPointOrEntity:
		if ev.Point == nil && ev.Entity == nil {
			missing = "point или entity"
		}
	}
	if missing != "" {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Команда '%s' требует параметр %s", req.Type, missing),
		})
		return
	}

	handled := rs.commander.Dispatch(c.Request.Context(), ev)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Команда обработана",
		Data: map[string]interface{}{
			"type":    req.Type,
			"handled": handled,
		},
	})
}

// handleListBuildings возвращает каталог зданий.
func (rs *RestServer) handleListBuildings(c *gin.Context) {
	ids := rs.buildings.IDs()

	buildings := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		entry, ok := rs.buildings.Get(id)
		if !ok {
			continue
		}
		buildings = append(buildings, map[string]interface{}{
			"id":          id,
			"cells":       len(entry.OcclusionMap),
			"description": entry.Description,
		})
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Каталог зданий",
		Data: map[string]interface{}{
			"buildings": buildings,
			"total":     len(buildings),
		},
	})
}

// handleListCommands возвращает каталог команд.
func (rs *RestServer) handleListCommands(c *gin.Context) {
	types := rs.commands.Types()

	commands := make([]map[string]interface{}, 0, len(types))
	for _, t := range types {
		entry, ok := rs.commands.Get(t)
		if !ok {
			continue
		}
		commands = append(commands, map[string]interface{}{
			"type":       t,
			"input_mode": entry.InputMode.String(),
		})
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Каталог команд",
		Data: map[string]interface{}{
			"commands": commands,
			"total":    len(commands),
		},
	})
}

// handleListPanels возвращает каталог деревьев панелей по типам сущностей.
func (rs *RestServer) handleListPanels(c *gin.Context) {
	entityTypes := rs.panels.EntityTypes()

	panels := make([]map[string]interface{}, 0, len(entityTypes))
	for _, et := range entityTypes {
		tree, ok := rs.panels.Get(et)
		if !ok {
			continue
		}
		names := make([]string, 0, len(tree.Panels))
		for name := range tree.Panels {
			names = append(names, name)
		}
		panels = append(panels, map[string]interface{}{
			"entity_type": et,
			"root":        tree.Root,
			"panels":      names,
		})
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Каталог панелей",
		Data: map[string]interface{}{
			"panels": panels,
			"total":  len(panels),
		},
	})
}

// handleJournalRecent возвращает последние записи журнала команд.
func (rs *RestServer) handleJournalRecent(c *gin.Context) {
	if rs.journal == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Журнал команд отключен",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 20
	}

	records, err := rs.journal.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Ошибка чтения журнала",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Последние команды",
		Data: map[string]interface{}{
			"records": records,
			"total":   len(records),
		},
	})
}

// ChunkRequest представляет запрос на создание чанка.
type ChunkRequest struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Populate bool `json:"populate"` // разметить природные препятствия
}

// handleCreateChunk материализует чанк карты (только для админов).
func (rs *RestServer) handleCreateChunk(c *gin.Context) {
	var req ChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	// Проверка и создание атомарны: два конкурентных запроса на одни
	// координаты не должны добраться до паники CreateChunk.
	coords := vec.Vec2{X: req.X, Y: req.Y}
	if _, created := rs.worldMap.CreateChunkIfAbsent(coords); !created {
		c.JSON(http.StatusConflict, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Чанк %s уже загружен", coords),
		})
		return
	}

	blocked := 0
	if req.Populate && rs.generator != nil {
		blocked = rs.generator.Populate(rs.worldMap, coords)
	}

	c.JSON(http.StatusCreated, GenericResponse{
		Success: true,
		Message: "Чанк создан",
		Data: map[string]interface{}{
			"chunk":   map[string]int{"x": req.X, "y": req.Y},
			"blocked": blocked,
		},
	})
}

// handleStats возвращает статистику сервера.
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := make(map[string]interface{})

	// Статистика пользователей (если поддерживается хранилищем)
	if mariaRepo, ok := rs.userRepo.(*auth.MariaUserRepo); ok {
		if userStats, err := mariaRepo.GetUserStats(); err == nil {
			stats["users"] = userStats
		}
	}

	// Статистика мира
	if rs.worldMap != nil {
		stats["world"] = map[string]interface{}{
			"chunks": rs.worldMap.ChunkCount(),
		}
	}
	if rs.buildings != nil {
		stats["content"] = map[string]interface{}{
			"buildings": len(rs.buildings.IDs()),
			"commands":  len(rs.commands.Types()),
			"panels":    len(rs.panels.EntityTypes()),
		}
	}

	// Метрики процесса
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()
	systemCPU, _ := rs.metrics.GetSystemCPUUsage()

	stats["server"] = map[string]interface{}{
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.2f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
		"system_cpu":  fmt.Sprintf("%.2f", systemCPU),
		"server_time": time.Now().Unix(),
	}

	stats["memory_details"] = rs.metrics.GetDetailedMemoryStats()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

// handleServerInfo возвращает информацию о сервере.
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	info := map[string]interface{}{
		"version":     "v0.1.0",
		"name":        "RTS Forge Server",
		"status":      "running",
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.1f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

// handleHealth проверка состояния сервера.
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер.
func (rs *RestServer) Start() error {
	return rs.router.Run(rs.port)
}

// Router возвращает gin.Engine (для тестов через httptest).
func (rs *RestServer) Router() *gin.Engine {
	return rs.router
}

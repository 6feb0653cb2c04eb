package game

import (
	"context"
	"fmt"

	"github.com/annel0/rts-forge/internal/control"
	"github.com/annel0/rts-forge/internal/eventbus"
	"github.com/annel0/rts-forge/internal/logging"
	"github.com/annel0/rts-forge/internal/vec"
	"github.com/annel0/rts-forge/internal/world"
	"github.com/annel0/rts-forge/internal/world/building"
)

// Идентификаторы базового контента.
const (
	BarracksID       = "core:barracks"
	WorkerEntityType = "core:worker"
	MoveCommandID    = "core:move"
	CancelCommandID  = "core:cancel"
)

// FieldSize — размер клетки в мировых единицах (для курсора застройки).
const FieldSize = 4.0

// RegisterDefaults наполняет реестры базовым контентом: казармы,
// команда перемещения, дерево панелей рабочего и диспетчер перемещения.
func RegisterDefaults(
	buildings *building.Registry,
	commands *control.CommandRegistry,
	panels *control.PanelRegistry,
	pipeline *control.Pipeline,
) {
	// Казармы: footprint 2x2, курсор смещён на полклетки для центрирования
	buildings.Register(BarracksID, &building.Entry{
		OcclusionMap: []vec.Vec2{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 0, Y: 1},
			{X: 1, Y: 1},
		},
		CursorOffset: vec.Vec2Float{X: -FieldSize / 2, Y: -FieldSize / 2},
		SpriteHandle: "sprites/barracks",
		Description:  "Казармы: обучение пехоты.",
		Build: func(entry *building.Entry, anchor vec.Vec2) {
			logging.Info("🏰 Построено здание '%s' в %s", BarracksID, anchor)
		},
	})

	commands.Register(control.CommandEntry{
		Type:      MoveCommandID,
		InputMode: control.InputSelectPoint,
	})

	panels.Register(WorkerEntityType, workerPanelTree())

	pipeline.Register(&control.DispatcherFunc{
		DispatcherName: "move",
		Types:          []string{MoveCommandID},
		Fn: func(ev control.CommandEvent) {
			if ev.Point != nil {
				logging.Info("🚶 Команда перемещения в (%.1f, %.1f)", ev.Point.X, ev.Point.Y)
			} else {
				logging.Info("🚶 Команда перемещения без цели")
			}
		},
	})
}

// workerPanelTree строит дерево панелей рабочего: корень с действием
// перемещения (переход на /build) и панель застройки с отменой (возврат).
func workerPanelTree() *control.Tree {
	root := &control.Panel{}
	root.Entries[0][0] = &control.Action{
		Command:    MoveCommandID,
		Transition: &control.Transition{Push: "/build"},
	}

	build := &control.Panel{}
	build.Entries[0][4] = &control.Action{
		Command:    CancelCommandID,
		Transition: &control.Transition{Pop: true},
	}

	return &control.Tree{
		Root: "/",
		Panels: map[string]*control.Panel{
			"/":      root,
			"/build": build,
		},
	}
}

// PregenerateMap создаёт стартовую область чанков вокруг начала координат
// и размечает природные препятствия. Радиус 2 даёт чанки от -2 до 1
// включительно по обеим осям.
func PregenerateMap(ctx context.Context, m *world.Map, gen *world.ObstacleGenerator, bus eventbus.EventBus, radius int) {
	for x := -radius; x < radius; x++ {
		for y := -radius; y < radius; y++ {
			coords := vec.Vec2{X: x, Y: y}
			m.CreateChunk(coords)

			blocked := 0
			if gen != nil {
				blocked = gen.Populate(m, coords)
			}
			logging.Debug("🗺️  Чанк %s создан (препятствий: %d)", coords, blocked)

			if bus != nil {
				payload := struct {
					X       int `json:"x"`
					Y       int `json:"y"`
					Blocked int `json:"blocked"`
				}{X: x, Y: y, Blocked: blocked}
				if err := eventbus.PublishEvent(ctx, bus, "world", eventbus.EventTypeChunkLoaded, payload); err != nil {
					logging.Warn("Не удалось опубликовать событие чанка: %v", err)
				}
				if err := eventbus.PublishToast(ctx, bus, "world", fmt.Sprintf("Загружен чанк %s", coords)); err != nil {
					logging.Warn("Не удалось опубликовать toast: %v", err)
				}
			}
		}
	}
	logging.Info("🗺️  Предгенерация завершена: %d чанков", m.ChunkCount())
}

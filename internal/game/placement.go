package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/rts-forge/internal/eventbus"
	"github.com/annel0/rts-forge/internal/logging"
	"github.com/annel0/rts-forge/internal/vec"
	"github.com/annel0/rts-forge/internal/world"
	"github.com/annel0/rts-forge/internal/world/building"
)

// ErrUnknownBuilding — попытка разместить незарегистрированный тип здания.
var ErrUnknownBuilding = errors.New("тип здания не зарегистрирован")

// Placer выполняет размещение зданий: сверяется с реестром, проводит
// транзакцию занятости на карте и только при успехе вызывает колбэк
// постройки. Мутация мира и порождение представления разделены намеренно:
// TryPlace решает исход только по занятости клеток.
type Placer struct {
	worldMap  *world.Map
	buildings *building.Registry
	bus       eventbus.EventBus
}

// NewPlacer создаёт сервис размещения.
func NewPlacer(worldMap *world.Map, buildings *building.Registry, bus eventbus.EventBus) *Placer {
	return &Placer{
		worldMap:  worldMap,
		buildings: buildings,
		bus:       bus,
	}
}

// PlaceBuilding размещает здание по якорной клетке. Заблокированное
// размещение — ожидаемый отрицательный результат, он возвращается статусом;
// ошибкой считается только неизвестный идентификатор здания.
func (p *Placer) PlaceBuilding(ctx context.Context, id string, anchor vec.Vec2) (world.PlaceStatus, error) {
	entry, ok := p.buildings.Get(id)
	if !ok {
		return world.PlaceInvalid, fmt.Errorf("%w: %q", ErrUnknownBuilding, id)
	}

	status := p.worldMap.TryPlace(anchor, entry.OcclusionMap)
	if status.Ok() {
		if entry.Build != nil {
			entry.Build(entry, anchor)
		}
		p.toast(ctx, fmt.Sprintf("Здание '%s' размещено в %s", id, anchor))
		logging.Debug("🏗️  Размещено '%s' в %s (клеток: %d)", id, anchor, len(entry.OcclusionMap))
		return status, nil
	}

	switch status {
	case world.PlaceOccupied:
		p.toast(ctx, fmt.Sprintf("Не удалось разместить '%s' в %s: клетки заняты", id, anchor))
	case world.PlaceNotLoaded:
		p.toast(ctx, fmt.Sprintf("Не удалось разместить '%s' в %s: область не загружена", id, anchor))
	}
	return status, nil
}

func (p *Placer) toast(ctx context.Context, content string) {
	if p.bus == nil {
		return
	}
	if err := eventbus.PublishToast(ctx, p.bus, "game", content); err != nil {
		logging.Warn("Не удалось опубликовать toast: %v", err)
	}
}

package cursor

import (
	"sync"

	"github.com/annel0/rts-forge/internal/vec"
)

// GridPosition — позиция курсора, привязанная к сетке: глобальная клетка
// плюс разложение на пару (чанк, локаль).
type GridPosition struct {
	Cell  vec.Vec2
	Chunk vec.Vec2
	Local vec.Vec2
}

// GridCursor хранит текущее положение указателя. Состоянием владеет слой
// ввода: карта курсор не знает и не опрашивает.
type GridCursor struct {
	mu        sync.RWMutex
	fieldSize float64
	world     *vec.Vec2Float
	grid      GridPosition
}

// NewGridCursor создаёт курсор для сетки с указанным размером клетки
// в мировых единицах.
func NewGridCursor(fieldSize float64) *GridCursor {
	if fieldSize <= 0 {
		fieldSize = 1
	}
	return &GridCursor{fieldSize: fieldSize}
}

// Update устанавливает мировую позицию указателя и пересчитывает привязку
// к сетке. Округление вниз: отрицательные мировые координаты попадают
// в клетку слева/снизу.
func (c *GridCursor) Update(world vec.Vec2Float) {
	cell := world.Mul(1 / c.fieldSize).FloorToVec2()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.world = &world
	c.grid = GridPosition{
		Cell:  cell,
		Chunk: cell.ToChunkCoords(),
		Local: cell.LocalInChunk(),
	}
}

// Clear сбрасывает позицию (указатель вне игрового поля).
func (c *GridCursor) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world = nil
}

// WorldPosition возвращает точную мировую позицию, если она известна.
func (c *GridCursor) WorldPosition() (vec.Vec2Float, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.world == nil {
		return vec.Vec2Float{}, false
	}
	return *c.world, true
}

// GridPosition возвращает привязанную к сетке позицию, если она известна.
func (c *GridCursor) GridPosition() (GridPosition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.world == nil {
		return GridPosition{}, false
	}
	return c.grid, true
}

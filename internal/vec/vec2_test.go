package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2_ChunkRoundTrip(t *testing.T) {
	// Для любой клетки FromChunkLocal(ToChunkCoords, LocalInChunk) == исходная клетка
	cells := []Vec2{
		{X: 0, Y: 0},
		{X: 15, Y: 15},
		{X: 16, Y: 16},
		{X: -1, Y: -1},
		{X: -16, Y: -16},
		{X: -17, Y: 33},
		{X: 1000000, Y: -1000000},
	}

	for _, cell := range cells {
		chunk := cell.ToChunkCoords()
		local := cell.LocalInChunk()
		back := FromChunkLocal(chunk, local)
		assert.Equal(t, cell, back, "Клетка %v не восстановилась из пары (чанк %v, локаль %v)", cell, chunk, local)
	}
}

func TestVec2_LocalRange(t *testing.T) {
	// Локальные координаты всегда в [0,16)
	for x := -100; x <= 100; x++ {
		for y := -100; y <= 100; y++ {
			local := Vec2{X: x, Y: y}.LocalInChunk()
			if local.X < 0 || local.X >= ChunkSize || local.Y < 0 || local.Y >= ChunkSize {
				t.Fatalf("Локальная координата вне диапазона [0,16): клетка (%d,%d) -> %v", x, y, local)
			}
		}
	}
}

func TestVec2_NegativeCoords(t *testing.T) {
	// Клетка (-1,-1) принадлежит чанку (-1,-1) с локальной позицией (15,15)
	cell := Vec2{X: -1, Y: -1}

	assert.Equal(t, Vec2{X: -1, Y: -1}, cell.ToChunkCoords(), "Неверный чанк для отрицательной клетки")
	assert.Equal(t, Vec2{X: 15, Y: 15}, cell.LocalInChunk(), "Неверная локальная позиция для отрицательной клетки")
}

func TestVec2Float_FloorToVec2(t *testing.T) {
	assert.Equal(t, Vec2{X: 1, Y: 2}, Vec2Float{X: 1.9, Y: 2.1}.FloorToVec2())
	assert.Equal(t, Vec2{X: -2, Y: -1}, Vec2Float{X: -1.1, Y: -0.5}.FloorToVec2(),
		"Отрицательные координаты должны округляться вниз, а не к нулю")
}

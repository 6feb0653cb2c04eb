package vec

import (
	"fmt"
	"math"
)

// ChunkSize — размер чанка в клетках по каждой оси.
const ChunkSize = 16

// Vec2 представляет целочисленные 2D координаты клетки
type Vec2 struct {
	X, Y int
}

// ToChunkCoords преобразует глобальные координаты клетки в координаты чанка.
// Арифметический сдвиг — это деление с округлением вниз, поэтому отрицательные
// координаты попадают в правильный чанк: клетка -1 → чанк -1, а не чанк 0.
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> 4, Y: v.Y >> 4} // Деление на 16 с floor-семантикой
}

// LocalInChunk возвращает локальные координаты внутри чанка.
// Маска даёт евклидов остаток: результат всегда в [0,16),
// для клетки -1 это локальная координата 15.
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: v.X & 0xF, Y: v.Y & 0xF} // Модуль 16
}

// FromChunkLocal восстанавливает глобальные координаты клетки из пары
// (чанк, локальная позиция): chunk*16 + local. Диапазон local не проверяется —
// это ответственность вызывающего.
func FromChunkLocal(chunk, local Vec2) Vec2 {
	return Vec2{
		X: chunk.X*ChunkSize + local.X,
		Y: chunk.Y*ChunkSize + local.Y,
	}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// String возвращает представление вида "(x,y)" для логов и сообщений.
func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

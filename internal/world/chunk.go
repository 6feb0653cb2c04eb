package world

import (
	"github.com/annel0/rts-forge/internal/vec"
)

// Chunk представляет участок карты размером 16x16 клеток.
// Хранит только флаги занятости; вся мутация идёт через Map,
// поэтому собственного мьютекса у чанка нет.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	tiles [vec.ChunkSize][vec.ChunkSize]bool // Занятость клеток по локальным координатам
}

// NewChunk создаёт пустой (полностью свободный) чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{Coords: coords}
}

// occupied возвращает флаг занятости клетки по локальным координатам.
func (c *Chunk) occupied(local vec.Vec2) bool {
	return c.tiles[local.X][local.Y]
}

// set устанавливает флаг занятости клетки по локальным координатам.
func (c *Chunk) set(local vec.Vec2, value bool) {
	c.tiles[local.X][local.Y] = value
}

// OccupiedCount возвращает количество занятых клеток (для статистики и отладки).
func (c *Chunk) OccupiedCount() int {
	count := 0
	for x := 0; x < vec.ChunkSize; x++ {
		for y := 0; y < vec.ChunkSize; y++ {
			if c.tiles[x][y] {
				count++
			}
		}
	}
	return count
}

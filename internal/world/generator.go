package world

import (
	"github.com/annel0/rts-forge/internal/util"
	"github.com/annel0/rts-forge/internal/vec"
)

// Пороговые значения высоты для природных препятствий
const (
	WaterMax = 0.25 // Ниже — вода, строить нельзя
	RockMin  = 0.85 // Выше — скалы, строить нельзя
)

// ObstacleGenerator размечает природные препятствия на свежесозданных чанках:
// клетки воды и скал стартуют занятыми, чтобы застройка их обходила.
// Генерация детерминирована по сиду.
type ObstacleGenerator struct {
	Seed       int64   // Сид для генерации шума
	NoiseScale float64 // Масштаб шума высоты
	Density    float64 // Дополнительная доля одиночных препятствий (0..1)

	noise *util.NoiseSource
}

// NewObstacleGenerator создаёт генератор препятствий с указанным сидом.
func NewObstacleGenerator(seed int64, density float64) *ObstacleGenerator {
	if density < 0 {
		density = 0
	}
	if density > 1 {
		density = 1
	}
	return &ObstacleGenerator{
		Seed:       seed,
		NoiseScale: 0.05, // Настройка сглаженности ландшафта
		Density:    density,
		noise:      util.NewNoiseSource(seed),
	}
}

// Populate размечает препятствия на чанке. Чанк должен быть уже создан;
// вызывается сразу после CreateChunk, до того как чанк виден игрокам.
// Возвращает количество занятых клеток.
func (g *ObstacleGenerator) Populate(m *Map, chunkPos vec.Vec2) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	chunk, exists := m.chunks[chunkPos]
	if !exists {
		return 0
	}

	blocked := 0
	for x := 0; x < vec.ChunkSize; x++ {
		for y := 0; y < vec.ChunkSize; y++ {
			local := vec.Vec2{X: x, Y: y}
			global := vec.FromChunkLocal(chunkPos, local)

			if g.isObstacle(global) {
				chunk.set(local, true)
				blocked++
			}
		}
	}
	return blocked
}

// isObstacle решает, является ли клетка природным препятствием.
func (g *ObstacleGenerator) isObstacle(cell vec.Vec2) bool {
	noiseX := float64(cell.X) * g.NoiseScale
	noiseY := float64(cell.Y) * g.NoiseScale

	height := g.noise.Noise2D(noiseX, noiseY)
	if height < WaterMax || height > RockMin {
		return true
	}

	if g.Density > 0 {
		// Отдельный слой шума с другим масштабом для одиночных валунов
		scatter := util.PerlinNoise2D(noiseX*7.3, noiseY*7.3, g.Seed+42)
		if scatter > 1.0-g.Density {
			return true
		}
	}
	return false
}

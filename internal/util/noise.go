package util

import (
	"sync"

	"github.com/aquilax/go-perlin"
)

// NoiseSource — детерминированный источник 2D шума Перлина.
// Один источник на сид; потокобезопасен после создания.
type NoiseSource struct {
	seed  int64
	noise *perlin.Perlin
}

var (
	sourcesMu sync.Mutex
	sources   = make(map[int64]*NoiseSource)
)

// NewNoiseSource создаёт источник шума с указанным сидом.
func NewNoiseSource(seed int64) *NoiseSource {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &NoiseSource{
		seed:  seed,
		noise: perlin.NewPerlin(alpha, beta, n, seed),
	}
}

// Noise2D возвращает значение шума для координат, нормированное в [0,1].
func (ns *NoiseSource) Noise2D(x, y float64) float64 {
	// Noise2D даёт значение от -1 до 1
	return (ns.noise.Noise2D(x, y) + 1.0) / 2.0
}

// PerlinNoise2D возвращает значение шума для указанного сида, кешируя источники.
func PerlinNoise2D(x, y float64, seed int64) float64 {
	sourcesMu.Lock()
	src, ok := sources[seed]
	if !ok {
		src = NewNoiseSource(seed)
		sources[seed] = src
	}
	sourcesMu.Unlock()

	return src.Noise2D(x, y)
}

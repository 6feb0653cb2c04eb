package world

import (
	"fmt"
	"sync"

	"github.com/annel0/rts-forge/internal/vec"
)

// CellState описывает состояние клетки с точки зрения размещения.
// Незагруженный чанк отличим от занятой клетки: вызывающий может
// различить "точно занято" и "ещё не загружено".
type CellState int

const (
	CellFree     CellState = iota // Чанк загружен, клетка свободна
	CellOccupied                  // Чанк загружен, клетка занята
	CellUnknown                   // Чанк не создан — состояние неизвестно
)

// String возвращает строковое представление состояния клетки.
func (s CellState) String() string {
	switch s {
	case CellFree:
		return "free"
	case CellOccupied:
		return "occupied"
	case CellUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// PlaceStatus — результат транзакции размещения.
type PlaceStatus int

const (
	PlaceOK        PlaceStatus = iota // Все клетки заняты успешно
	PlaceOccupied                     // Хотя бы одна клетка уже занята
	PlaceNotLoaded                    // Хотя бы одна клетка в несозданном чанке

	// PlaceInvalid — транзакция не проводилась (например, неизвестный
	// тип здания); осмысленна только вместе с ошибкой.
	PlaceInvalid PlaceStatus = -1
)

// Ok сообщает, удалось ли размещение.
func (s PlaceStatus) Ok() bool { return s == PlaceOK }

// String возвращает строковое представление результата размещения.
func (s PlaceStatus) String() string {
	switch s {
	case PlaceOK:
		return "ok"
	case PlaceOccupied:
		return "occupied"
	case PlaceNotLoaded:
		return "not_loaded"
	default:
		return "invalid"
	}
}

// Map владеет чанками сетки застройки. Чанки создаются только явно
// и никогда не выгружаются. Все обращения защищены RWMutex: карта
// живёт в процессе с конкурентными обработчиками запросов.
type Map struct {
	mu     sync.RWMutex
	chunks map[vec.Vec2]*Chunk
}

// NewMap создаёт пустую карту без единого чанка.
func NewMap() *Map {
	return &Map{
		chunks: make(map[vec.Vec2]*Chunk),
	}
}

// CreateChunk материализует пустой чанк по координатам чанка.
// Повторное создание чанка — ошибка программиста, а не условие времени
// выполнения: вызывающий обязан отслеживать созданные чанки. Паникуем.
func (m *Map) CreateChunk(coords vec.Vec2) *Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.chunks[coords]; exists {
		panic(fmt.Sprintf("чанк %v уже существует", coords))
	}

	chunk := NewChunk(coords)
	m.chunks[coords] = chunk
	return chunk
}

// CreateChunkIfAbsent материализует чанк, если его ещё нет. В отличие от
// CreateChunk дубликат здесь — условие времени выполнения (конкурентные
// запросы на одни координаты), поэтому вместо паники возвращается false.
// Проверка и вставка выполняются под одной блокировкой.
func (m *Map) CreateChunkIfAbsent(coords vec.Vec2) (*Chunk, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, exists := m.chunks[coords]; exists {
		return existing, false
	}

	chunk := NewChunk(coords)
	m.chunks[coords] = chunk
	return chunk, true
}

// HasChunk сообщает, создан ли чанк с указанными координатами.
func (m *Map) HasChunk(coords vec.Vec2) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.chunks[coords]
	return exists
}

// ChunkCount возвращает число созданных чанков.
func (m *Map) ChunkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.chunks)
}

// ChunkCoords возвращает координаты всех созданных чанков.
func (m *Map) ChunkCoords() []vec.Vec2 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coords := make([]vec.Vec2, 0, len(m.chunks))
	for c := range m.chunks {
		coords = append(coords, c)
	}
	return coords
}

// CellAt возвращает трёхзначное состояние клетки по паре (чанк, локаль).
func (m *Map) CellAt(chunkPos, localPos vec.Vec2) CellState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cellAtLocked(chunkPos, localPos)
}

// CellAtGlobal возвращает состояние клетки по глобальным координатам.
func (m *Map) CellAtGlobal(cell vec.Vec2) CellState {
	return m.CellAt(cell.ToChunkCoords(), cell.LocalInChunk())
}

func (m *Map) cellAtLocked(chunkPos, localPos vec.Vec2) CellState {
	chunk, exists := m.chunks[chunkPos]
	if !exists {
		return CellUnknown
	}
	if chunk.occupied(localPos) {
		return CellOccupied
	}
	return CellFree
}

// IsOccupied возвращает булев fail-closed взгляд на клетку: true, если клетка
// занята ИЛИ её чанк не создан. Клиенты, которым важно различать эти случаи,
// должны использовать CellAt.
func (m *Map) IsOccupied(chunkPos, localPos vec.Vec2) bool {
	return m.CellAt(chunkPos, localPos) != CellFree
}

// TryPlace выполняет атомарную транзакцию размещения: либо все клетки
// occlusion map занимаются, либо карта остаётся нетронутой.
//
// Фаза 1 (проверка, только чтение): каждое смещение резолвится в пару
// (чанк, локаль); первая занятая клетка или несозданный чанк прерывает
// операцию без мутаций. Фаза 2 (коммит) выполняется только после полной
// проверки и повторно резолвит координаты — откат не нужен, потому что
// фаза 1 ничего не меняет.
func (m *Map) TryPlace(anchor vec.Vec2, occlusionMap []vec.Vec2) PlaceStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Фаза 1: проверка занятости
	for _, offset := range occlusionMap {
		cell := anchor.Add(offset)
		switch m.cellAtLocked(cell.ToChunkCoords(), cell.LocalInChunk()) {
		case CellOccupied:
			return PlaceOccupied
		case CellUnknown:
			return PlaceNotLoaded
		}
	}

	// Фаза 2: коммит
	for _, offset := range occlusionMap {
		cell := anchor.Add(offset)
		chunk, exists := m.chunks[cell.ToChunkCoords()]
		if !exists {
			// Фаза 1 подтвердила существование чанка; чанки не выгружаются
			panic(fmt.Sprintf("чанк для клетки %v исчез между проверкой и коммитом", cell))
		}
		// Повторное смещение в одном occlusion map повторно занимает ту же
		// клетку — это безвредно, поэтому дубликаты не считаются конфликтом.
		chunk.set(cell.LocalInChunk(), true)
	}

	return PlaceOK
}

package control

import (
	"sync"

	"github.com/annel0/rts-forge/internal/logging"
)

// Размеры сетки панели управления: 3 ряда по 5 ячеек.
const (
	PanelRows = 3
	PanelCols = 5
)

// Transition — переход между панелями одного дерева.
// Pop и Push взаимоисключающие: Pop=true возвращает на предыдущую панель,
// иначе Push задаёт имя панели для перехода.
type Transition struct {
	Pop  bool   `json:"pop,omitempty"`
	Push string `json:"push,omitempty"`
}

// Action — действие ячейки панели: исполнить команду, перейти на другую
// панель или атомарно и то и другое. Пустая команда — чистый переход,
// nil-переход — чистая команда.
type Action struct {
	Command    string      `json:"command,omitempty"`
	Transition *Transition `json:"transition,omitempty"`
}

// Panel — фиксированная сетка действий 3x5. nil-ячейка пуста.
type Panel struct {
	Entries [PanelRows][PanelCols]*Action `json:"entries"`
}

// Tree — дерево панелей одного типа сущности: корневая панель плюс
// именованные панели, достижимые через Push.
type Tree struct {
	Root   string            `json:"root"`
	Panels map[string]*Panel `json:"panels"`
}

// PanelRegistry хранит деревья панелей по типу сущности. Реестр — только
// каталог возможных панелей; состояние навигации живёт в Navigator,
// одно дерево обслуживает сколько угодно одновременных выделений.
type PanelRegistry struct {
	mu    sync.RWMutex
	trees map[string]*Tree
}

// NewPanelRegistry создаёт пустой реестр панелей.
func NewPanelRegistry() *PanelRegistry {
	return &PanelRegistry{
		trees: make(map[string]*Tree),
	}
}

// Register добавляет или перезаписывает дерево панелей для типа сущности.
// Конфликт — WARN, не ошибка.
func (r *PanelRegistry) Register(entityType string, tree *Tree) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trees[entityType]; exists {
		logging.Warn("⚠️  Дерево панелей для '%s' перезаписано", entityType)
	} else {
		logging.Info("🗂️  Зарегистрировано дерево панелей для '%s' (панелей: %d)",
			entityType, len(tree.Panels))
	}
	r.trees[entityType] = tree
}

// Get возвращает дерево панелей типа сущности; промах — ожидаемое условие.
func (r *PanelRegistry) Get(entityType string) (*Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tree, exists := r.trees[entityType]
	return tree, exists
}

// EntityTypes возвращает все типы сущностей с зарегистрированными деревьями.
func (r *PanelRegistry) EntityTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.trees))
	for t := range r.trees {
		types = append(types, t)
	}
	return types
}

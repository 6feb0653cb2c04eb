package control

import (
	"errors"
	"fmt"
)

// ErrUnknownPanel сигнализирует Push на неопределённую панель.
// Это ошибка данных дерева панелей (ошибка авторинга), а не обычный
// промах каталога, поэтому она возвращается как error, а не bool.
var ErrUnknownPanel = errors.New("панель не определена в дереве")

// Navigator хранит состояние навигации одного выделения: текущую панель
// и стек возврата. Реестр панелей состоянием не владеет — навигатор
// создаётся на каждое выделение поверх неизменяемого дерева.
type Navigator struct {
	tree    *Tree
	current string
	stack   []string
}

// NewNavigator создаёт навигатор на корневой панели дерева.
func NewNavigator(tree *Tree) *Navigator {
	return &Navigator{
		tree:    tree,
		current: tree.Root,
	}
}

// Current возвращает имя текущей панели.
func (n *Navigator) Current() string { return n.current }

// CurrentPanel возвращает текущую панель или nil, если имя не определено
// в дереве (возможно только при битых данных дерева).
func (n *Navigator) CurrentPanel() *Panel {
	return n.tree.Panels[n.current]
}

// Depth возвращает глубину стека возврата.
func (n *Navigator) Depth() int { return len(n.stack) }

// Push переходит на именованную панель, запоминая текущую в стеке.
// Push на неопределённое имя — ошибка, а не тихий no-op.
func (n *Navigator) Push(name string) error {
	if _, exists := n.tree.Panels[name]; !exists {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}
	n.stack = append(n.stack, n.current)
	n.current = name
	return nil
}

// Pop возвращается на предыдущую панель. На пустом стеке остаёмся на
// корне: Pop за корень — no-op, не ошибка.
func (n *Navigator) Pop() {
	if len(n.stack) == 0 {
		n.current = n.tree.Root
		return
	}
	n.current = n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
}

// Apply исполняет действие ячейки панели: сначала команда через конвейер
// (если задана), затем переход (если задан) — атомарно с точки зрения
// вызывающего. Возвращает число сработавших диспетчеров.
func (n *Navigator) Apply(action *Action, pipeline *Pipeline, ev CommandEvent) (int, error) {
	handled := 0
	if action.Command != "" {
		ev.Type = action.Command
		handled = pipeline.Dispatch(ev)
	}

	if action.Transition != nil {
		if action.Transition.Pop {
			n.Pop()
		} else if err := n.Push(action.Transition.Push); err != nil {
			return handled, err
		}
	}
	return handled, nil
}

// tree — состояние дерева комментариев одной загрузки страницы.
//
// Машина состояний: Loading -> Success | Error; каждое обновление снова
// проходит через Loading и целиком заменяет лес. Частичных обновлений нет:
// новый лес публикуется атомарно одним снимком.
package tree

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/pribylovaa/comments-web/internal/metrics"
	"github.com/pribylovaa/comments-web/internal/models"
)

// State — фаза загрузки дерева.
type State int

const (
	Loading State = iota
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot — неизменяемый снимок. Forest заполнен только в Success,
// Err — только в Error.
type Snapshot struct {
	State  State
	Forest []models.Comment
	Err    error
}

// Fetcher загружает полный лес комментариев.
type Fetcher func(ctx context.Context) ([]models.Comment, error)

// Tree хранит текущий снимок за атомарным указателем.
type Tree struct {
	fetch   Fetcher
	metrics *metrics.Metrics
	snap    atomic.Pointer[Snapshot]
}

var loading = &Snapshot{State: Loading}

// New создаёт дерево в состоянии Loading. m может быть nil.
func New(fetch Fetcher, m *metrics.Metrics) *Tree {
	t := &Tree{fetch: fetch, metrics: m}
	t.snap.Store(loading)
	return t
}

// Snapshot — текущий снимок.
func (t *Tree) Snapshot() *Snapshot { return t.snap.Load() }

// Refresh публикует Loading, перечитывает лес и публикует результат.
// При ошибке прежние данные отбрасываются.
func (t *Tree) Refresh(ctx context.Context) *Snapshot {
	t.snap.Store(loading)

	forest, err := t.fetch(ctx)

	next := &Snapshot{State: Success, Forest: forest}
	if err != nil {
		next = &Snapshot{State: Error, Err: err}
	} else if t.metrics != nil {
		t.metrics.TreeNodes.Observe(float64(Count(forest)))
	}

	t.snap.Store(next)
	return next
}

// Submit выполняет post и при успехе перечитывает дерево. Ошибка post
// возвращается как есть, снимок при этом не меняется.
func (t *Tree) Submit(ctx context.Context, post func(ctx context.Context) error) error {
	if err := post(ctx); err != nil {
		return err
	}

	t.Refresh(ctx)
	return nil
}

// Count — число узлов в лесу.
func Count(forest []models.Comment) int {
	n := 0
	stack := make([]*models.Comment, 0, len(forest))
	for i := range forest {
		stack = append(stack, &forest[i])
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		for i := range c.Children {
			stack = append(stack, &c.Children[i])
		}
	}
	return n
}

package tree

import "github.com/pribylovaa/comments-web/internal/models"

// Row — строка плоского представления дерева.
// Level — настоящая глубина узла, Depth — глубина отступа (не больше maxDepth).
type Row struct {
	Comment *models.Comment
	Depth   int
	Level   int
}

// Rows обходит лес в прямом порядке (узел, затем его ответы по порядку).
// Обход итеративный, поэтому глубина цепочки ответов не ограничена стеком.
// maxDepth <= 0 — отступ не ограничен; иначе глубже maxDepth узлы выводятся
// с отступом maxDepth, но не отбрасываются.
func Rows(forest []models.Comment, maxDepth int) []Row {
	type frame struct {
		c     *models.Comment
		level int
	}

	rows := make([]Row, 0, len(forest))
	stack := make([]frame, 0, len(forest))

	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{c: &forest[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		depth := f.level
		if maxDepth > 0 && depth > maxDepth {
			depth = maxDepth
		}
		rows = append(rows, Row{Comment: f.c, Depth: depth, Level: f.level})

		ch := f.c.Children
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, frame{c: &ch[i], level: f.level + 1})
		}
	}

	return rows
}

// Package comments — tree.go собирает плоский список в дерево ответов.
package comments

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// BuildTree раскладывает комментарии по родителям за один проход.
// Комментарий, чей родитель не попал в выборку, становится корнем.
// Порядок среди соседей совпадает с порядком во входном срезе.
func BuildTree(flat []Comment) []*Node {
	nodes := lo.Map(flat, func(c Comment, _ int) *Node {
		return &Node{Comment: c, Children: []*Node{}}
	})
	byID := lo.KeyBy(nodes, func(n *Node) uuid.UUID { return n.ID })

	roots := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ParentID != nil {
			// Сам себе не родитель, иначе узел потеряется из дерева
			if parent, ok := byID[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// CountNodes — сколько всего комментариев в дереве.
func CountNodes(roots []*Node) int {
	n := 0
	for _, r := range roots {
		n += 1 + CountNodes(r.Children)
	}
	return n
}

package service

import (
	"github.com/aryan0dhankhar/threadline/internal/domain"
)

// treeSlot is one arena entry: the comment plus the arena indexes of its replies
type treeSlot struct {
	comment  domain.Comment
	children []int
}

// BuildCommentTree turns a flat newest-first listing into a forest of replies.
// Sibling order follows input order. Comments whose parent is absent from the
// input are dropped. A repeated id is only attached the first time it appears.
func BuildCommentTree(comments []domain.Comment) []domain.CommentNode {
	roots, _ := buildCommentTree(comments)
	return roots
}

// buildCommentTree also reports how many comments were left out as orphans or duplicates
func buildCommentTree(comments []domain.Comment) ([]domain.CommentNode, int) {
	arena := make([]treeSlot, 0, len(comments))
	index := make(map[int64]int, len(comments))

	for _, c := range comments {
		if _, seen := index[c.ID]; seen {
			continue
		}
		index[c.ID] = len(arena)
		arena = append(arena, treeSlot{comment: c})
	}

	var roots []int
	for i := range arena {
		c := &arena[i].comment
		if c.IsRoot() {
			roots = append(roots, i)
			continue
		}
		parent, ok := index[c.ParentID]
		if !ok || parent == i {
			continue
		}
		arena[parent].children = append(arena[parent].children, i)
	}

	// Materialise from the roots down; anything caught in a parent cycle is never reached.
	visited := make([]bool, len(arena))
	var materialise func(i int) domain.CommentNode
	materialise = func(i int) domain.CommentNode {
		visited[i] = true
		node := domain.CommentNode{
			Comment:  arena[i].comment,
			Children: make([]domain.CommentNode, 0, len(arena[i].children)),
		}
		for _, child := range arena[i].children {
			if visited[child] {
				continue
			}
			node.Children = append(node.Children, materialise(child))
		}
		return node
	}

	forest := make([]domain.CommentNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, materialise(r))
	}
	reached := 0
	for _, v := range visited {
		if v {
			reached++
		}
	}

	return forest, len(comments) - reached
}

package tree

import "strconv"

// Target is one candidate position for a move: the moving node would be placed right
// before or after the node at Path.
type Target struct {
	Path        string
	Title       string
	Depth       int
	CanMoveHere bool
}

// TargetTaggedTreeForContainer lists every node below root, tagged with whether moving
// next to it keeps the tree valid.
func TargetTaggedTreeForContainer(moving *Container, root *Container) []Target {
	height := Height(moving)
	containerHeight := ContainerHeight(moving)

	var targets []Target
	Walk(root, func(n Node) {
		depth := Depth(n)
		ok := Node(moving) != n &&
			!IsDescendant(n, moving) &&
			!siblingsHold(n, moving, isExtract) &&
			depth+containerHeight <= MaxContainerDepth &&
			depth+height <= MaxDepth

		targets = append(targets, Target{Path: Path(n), Title: n.GetTitle(), Depth: depth, CanMoveHere: ok})
	})
	return targets
}

// TargetTaggedTreeForExtract lists every node below root, tagged with whether the extract
// can be moved next to it.
func TargetTaggedTreeForExtract(moving *Extract, root *Container) []Target {
	var targets []Target
	Walk(root, func(n Node) {
		depth := Depth(n)
		ok := Node(moving) != n &&
			!siblingsHold(n, moving, isContainer) &&
			depth <= MaxDepth

		targets = append(targets, Target{Path: Path(n), Title: n.GetTitle(), Depth: depth, CanMoveHere: ok})
	})
	return targets
}

// siblingsHold reports whether the parent of n, ignoring the moving node, holds a child
// matching kind. n itself counts.
func siblingsHold(n Node, moving Node, kind func(Node) bool) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	for _, child := range parent.Children {
		if child != moving && kind(child) {
			return true
		}
	}
	return false
}

func isExtract(n Node) bool {
	_, ok := n.(*Extract)
	return ok
}

func isContainer(n Node) bool {
	_, ok := n.(*Container)
	return ok
}

// MoveBefore detaches moving and reinserts it right before target. It fails when the
// resulting tree would not validate, leaving the tree untouched.
func MoveBefore(moving Node, target Node) error {
	return move(moving, target, 0)
}

// MoveAfter detaches moving and reinserts it right after target.
func MoveAfter(moving Node, target Node) error {
	return move(moving, target, 1)
}

func move(moving Node, target Node, offset int) error {
	if !canMove(moving, target) {
		return ErrInvalidMove
	}

	from := moving.Parent()
	to := target.Parent()
	from.Remove(moving)

	idx := 0
	for i, child := range to.Children {
		if child == target {
			idx = i + offset
			break
		}
	}
	to.Children = append(to.Children, nil)
	copy(to.Children[idx+1:], to.Children[idx:])
	to.Children[idx] = moving
	moving.setParent(to)

	if from != to {
		moving.setSlug(to.uniqueSlugExcept(moving.GetSlug(), moving))
	}
	return nil
}

func canMove(moving Node, target Node) bool {
	if moving.Parent() == nil || target.Parent() == nil {
		return false
	}
	root := Root(target)
	var targets []Target
	switch m := moving.(type) {
	case *Container:
		targets = TargetTaggedTreeForContainer(m, root)
	case *Extract:
		targets = TargetTaggedTreeForExtract(m, root)
	}
	path := Path(target)
	for _, t := range targets {
		if t.Path == path {
			return t.CanMoveHere
		}
	}
	return false
}

func (c *Container) uniqueSlugExcept(base string, self Node) string {
	candidate := base
	for i := 1; ; i++ {
		clash := reserved(candidate)
		for _, child := range c.Children {
			if child != self && child.GetSlug() == candidate {
				clash = true
				break
			}
		}
		if !clash {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

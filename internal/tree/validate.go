package tree

import (
	"fmt"
	"strings"
)

// Validate checks that the tree rooted at root can be published.
func Validate(root *Container) error {
	if len(root.Children) == 0 {
		return ErrEmptyTree
	}
	if err := checkSlug(root); err != nil {
		return err
	}
	return validateContainer(root, 0)
}

func validateContainer(c *Container, depth int) error {
	if depth > MaxContainerDepth {
		return fmt.Errorf("%w: %q at depth %d", ErrTooDeep, Path(c), depth)
	}
	if c.HasExtracts() && c.HasSubContainers() {
		return fmt.Errorf("%w: %q", ErrMixedChildren, Path(c))
	}

	seen := make(map[string]struct{}, len(c.Children))
	for _, child := range c.Children {
		if err := checkSlug(child); err != nil {
			return err
		}
		if Reserved(child.GetSlug()) {
			return fmt.Errorf("%w: %q in %q", ErrReservedSlug, child.GetSlug(), Path(c))
		}
		if _, ok := seen[child.GetSlug()]; ok {
			return fmt.Errorf("%w: %q in %q", ErrDuplicateSlug, child.GetSlug(), Path(c))
		}
		seen[child.GetSlug()] = struct{}{}

		if sub, ok := child.(*Container); ok {
			if err := validateContainer(sub, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkSlug(n Node) error {
	s := n.GetSlug()
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, s)
	}
	return nil
}

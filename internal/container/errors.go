package container

import "fmt"

// ErrUnsupportedTraversal is returned by Iterate when traversalName is not
// one of the container's SupportedTraversals.
type ErrUnsupportedTraversal struct {
	Container string
	Name      string
}

func (e *ErrUnsupportedTraversal) Error() string {
	return fmt.Sprintf("container %s: unsupported traversal %q", e.Container, e.Name)
}

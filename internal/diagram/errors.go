package diagram

import "errors"

// Sentinel errors for model operations.
var (
	// ErrConnectionRejected is returned by CreateWire for any refused
	// connection. The reason is wrapped alongside it.
	ErrConnectionRejected = errors.New("diagram: connection rejected")

	// ErrSameDirection means both endpoints are inputs or both are outputs.
	ErrSameDirection = errors.New("diagram: ports have the same direction")

	// ErrNodeNotFound means a referenced node does not exist.
	ErrNodeNotFound = errors.New("diagram: node not found")

	// ErrPortNotFound means the node exists but has no such port.
	ErrPortNotFound = errors.New("diagram: port not found")

	// ErrDuplicateID means an explicit node or wire id is already taken.
	ErrDuplicateID = errors.New("diagram: duplicate id")

	// ErrInvalidSpec wraps validation failures of a NodeSpec.
	ErrInvalidSpec = errors.New("diagram: invalid node spec")

	// ErrInvalidColor means a color is neither hex nor rgb().
	ErrInvalidColor = errors.New("diagram: invalid color")
)

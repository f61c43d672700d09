package document

import "github.com/pkg/errors"

var (
	// ErrInvalidClass is returned when a node class is missing required hooks.
	ErrInvalidClass = errors.New("document: invalid node class")
	// ErrDuplicateType is returned when two classes share a type tag.
	ErrDuplicateType = errors.New("document: duplicate node type")
	// ErrUnknownType is returned when serialized data names an unregistered type.
	ErrUnknownType = errors.New("document: unknown node type")
	// ErrNodeNotFound is returned when a key does not resolve in the state.
	ErrNodeNotFound = errors.New("document: node not found")
	// ErrInvalidTree is returned for structural violations such as appending
	// to a non-element or inserting next to the root.
	ErrInvalidTree = errors.New("document: invalid tree operation")
)

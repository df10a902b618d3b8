package query

import "errors"

var (
	// ErrInvalidArgument is returned for caller arguments that contradict each other.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupported is returned when the aggregate lacks what a statement needs.
	ErrUnsupported = errors.New("unsupported statement")
	// ErrUnknownAggregate is returned by the catalog for unregistered roots.
	ErrUnknownAggregate = errors.New("unknown aggregate")
)

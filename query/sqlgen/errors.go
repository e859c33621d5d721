package sqlgen

import (
	"errors"
	"fmt"
)

// ErrCompilation is the kind of every error returned by the compiler. A
// compilation error means the query is malformed; it never reaches the
// connection.
var ErrCompilation = errors.New("query compilation failed")

var (
	ErrUnconditionalUpdate = fmt.Errorf("%w: update query conditions not found", ErrCompilation)
	ErrNoValues            = fmt.Errorf("%w: no values to store", ErrCompilation)
	ErrNoResource          = fmt.Errorf("%w: resource name is required", ErrCompilation)
	ErrEmptyList           = fmt.Errorf("%w: empty value list", ErrCompilation)
	ErrUnsupportedOperator = fmt.Errorf("%w: unsupported operator", ErrCompilation)
	ErrUnsupportedNode     = fmt.Errorf("%w: unsupported evaluator", ErrCompilation)
	ErrNegativeLimit       = fmt.Errorf("%w: negative limit", ErrCompilation)
)

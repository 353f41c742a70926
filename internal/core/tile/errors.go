package tile

import (
	"errors"

	"github.com/zeusync/cubewalk/internal/core/axis"
)

var (
	// ErrInvalidDirectionVector is the axis sentinel, re-exported for callers of this package.
	ErrInvalidDirectionVector = axis.ErrInvalidDirectionVector
	ErrInvalidBasis           = errors.New("tile basis is not orthonormal")
)

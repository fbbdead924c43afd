package user

import (
	"fmt"

	sharederrors "github.com/uniedit/apiclient/internal/shared/errors"
)

// MaxBatchSize is the largest number of ids ResolveMany accepts.
const MaxBatchSize = 100

// Module errors.
var (
	ErrUserNotFound = sharederrors.NotFound("user")
	ErrTooManyIDs   = sharederrors.InvalidArgument(fmt.Sprintf("at most %d user ids per request", MaxBatchSize))
)

package builder

import "github.com/pkg/errors"

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrFilterKind      = errors.New("filter does not match column kind")
	ErrPageSize        = errors.New("page size not allowed")
	ErrFeatureDisabled = errors.New("feature disabled for this table")
	ErrUnknownRow      = errors.New("unknown row")
)

package forces

import "errors"

var (
	ErrDuplicateStructure  = errors.New("structure already registered")
	ErrUnknownStructure    = errors.New("unknown structure")
	ErrInvalidTimeInterval = errors.New("new time must be greater than current time")
	ErrLevelRange          = errors.New("level range outside hierarchy")
	ErrStaleDomain         = errors.New("structure domain not updated for this time interval")
	ErrMissingRestartData  = errors.New("missing restart data")
)

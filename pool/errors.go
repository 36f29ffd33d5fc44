package pool

import "github.com/joshuapare/objpool/pkg/types"

// Errors returned by Pool. Match them with errors.Is; every error carrying
// the same kind matches regardless of message.
var (
	// ErrOutOfPages indicates every page is full for the requested type.
	ErrOutOfPages = types.ErrOutOfPages

	// ErrConstruction indicates the factory or hash function failed.
	ErrConstruction = types.ErrConstruction

	// ErrTypeTableFull accompanies ErrOutOfPages when pages were skipped
	// because their type tables were exhausted.
	ErrTypeTableFull = types.ErrTypeTableFull

	// ErrNotFound indicates Free was given an object that is not allocated,
	// including a second free of the same handle.
	ErrNotFound = types.ErrNotFound

	// ErrInvalidConfig indicates a Config that fails validation.
	ErrInvalidConfig = types.ErrConfig
)

package save

import (
	"errors"

	"github.com/meigma/save/internal/wire"
)

// Sentinel errors re-exported from internal/wire.
var (
	// ErrTruncated is returned when the stream ends inside a header field
	// or with body bytes still owed.
	ErrTruncated = wire.ErrTruncated

	// ErrInvalidName is returned when a member name is not valid UTF-16.
	ErrInvalidName = wire.ErrInvalidName

	// ErrNameTooLong is returned when a member name exceeds the 32-bit
	// length field.
	ErrNameTooLong = wire.ErrNameTooLong
)

// Sentinel errors specific to the save package.
var (
	// ErrBodyTooLarge is returned when a member body exceeds the 32-bit
	// length field.
	ErrBodyTooLarge = errors.New("save: member body exceeds 32-bit length field")

	// ErrStaleMember is returned when a Member is read after a later call
	// to Next invalidated it.
	ErrStaleMember = errors.New("save: member read after Next")

	// ErrInsecureName is returned during extraction when a member name
	// would escape the destination directory.
	ErrInsecureName = errors.New("save: insecure member name")
)

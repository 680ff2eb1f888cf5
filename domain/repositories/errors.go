package repositories

import "errors"

// ErrNotFound is returned by every backend when no row matches, including
// conditional updates and deletes whose owner filter excluded the row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique column (email, username, google id) collides.
var ErrDuplicate = errors.New("duplicate record")

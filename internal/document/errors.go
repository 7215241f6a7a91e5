package document

import "errors"

// ErrNotRegular is returned when an explicitly loaded path is not a regular file.
var ErrNotRegular = errors.New("not a regular file")

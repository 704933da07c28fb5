package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing recipe name, malformed ingredient amount).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrTagInUse is returned when a rename or delete is attempted on a tag that
// still has recipes associated with it. Tags are created and destroyed
// implicitly by recipe writes; only unreferenced tags may be touched directly.
// Handlers should map this to HTTP 409 Conflict.
var ErrTagInUse = errors.New("tag in use")

// ErrConflict is returned when an operation would collide with existing
// state, such as renaming a tag to a name that already exists.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")

// ErrInconsistency is reported by the audit pass when the tag index and the
// recipe records disagree — a tag referencing a missing recipe, or a recipe
// whose tags are absent from the index. It signals that a rebuild is needed.
var ErrInconsistency = errors.New("index inconsistency detected")

package db

import "errors"

// Errors returned by backends and by JiraDatabase operations.
//
// Callers check them with errors.Is:
//
//	if errors.Is(err, db.ErrEpicNotFound) {
//	    // stale id from a previous screen
//	}
var (
	// ErrReadFailure is returned when a backend cannot produce a document:
	// the target is missing or unreadable, or its contents do not decode.
	ErrReadFailure = errors.New("read failure")

	// ErrWriteFailure is returned when a backend cannot persist a document.
	ErrWriteFailure = errors.New("write failure")

	// ErrEpicNotFound is returned when an epic id is not in the document.
	ErrEpicNotFound = errors.New("epic not found")

	// ErrStoryNotFound is returned when a story id is not in the document.
	ErrStoryNotFound = errors.New("story not found")

	// ErrStoryNotInEpic is returned when a story id is not in the given
	// epic's story list, whether or not the story itself exists.
	ErrStoryNotInEpic = errors.New("story not in epic")

	// ErrInvalidStatus is returned when a status is not one of the four tokens.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidText is returned when a name or description is not valid
	// UTF-8. Such text cannot be stored losslessly by every backend.
	ErrInvalidText = errors.New("invalid text")

	// ErrIDExhausted is returned when the id counter cannot be advanced.
	ErrIDExhausted = errors.New("id space exhausted")
)

// IsNotFound returns true for the logical precondition failures a caller is
// expected to recover from, typically by refreshing its view.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrEpicNotFound) ||
		errors.Is(err, ErrStoryNotFound) ||
		errors.Is(err, ErrStoryNotInEpic)
}

// IsFatal returns true if the operation failed because the backend could not
// be read or written. These are never retried.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrReadFailure) || errors.Is(err, ErrWriteFailure)
}

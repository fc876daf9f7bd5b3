package books

// The Service returns exactly two error kinds to callers: NotFoundError for
// lookups of ids with no record, and InvalidInputError for payloads that
// fail validation. Anything else (a failing storage layer) is an ordinary
// wrapped error and means the operation was aborted, not that the caller
// did something wrong.

// NotFoundError reports that no book record exists at the requested id. The
// message names the id.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

// InvalidInputError reports that a caller-supplied payload failed
// validation before any state was touched.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return e.Msg
}

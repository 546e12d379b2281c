package engine

import "fmt"

// ValidationError reports missing or malformed request input. Mapped to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NotFoundError reports an absent learner or goal row. Mapped to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ContentError reports that the provider returned 2xx but its content
// failed parsing, schema validation, or the sequencing check. This is a
// different failure class from a transport error: the provider worked, the
// data is bad. The raw content is attached for diagnosis. Mapped to 500.
type ContentError struct {
	Reason string
	Raw    string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("invalid scenario content: %s", e.Reason)
}

package intake

import "errors"

var (
	ErrSessionNotFound     = errors.New("form session not found")
	ErrSessionBusy         = errors.New("an upload or submission is still in progress")
	ErrSubmissionFailed    = errors.New("lead submission failed")
	ErrUnknownDocumentType = errors.New("document type is not requested by this form")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUnknownMessage      = errors.New("unknown message type")
)

// SubmissionError carries the backend's message for a rejected create or update.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Message == "" {
		return ErrSubmissionFailed.Error()
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmissionFailed, e.Err}
}

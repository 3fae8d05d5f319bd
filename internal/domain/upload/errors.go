package upload

import "errors"

var (
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType     = errors.New("file type is not allowed")
	ErrEmptyFile           = errors.New("file is empty")
	ErrMissingDocumentType = errors.New("document type is required")
	ErrUploadFailed        = errors.New("upload failed")
	ErrNoLocation          = errors.New("document storage returned no url")
)

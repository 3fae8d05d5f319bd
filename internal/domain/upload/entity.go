package upload

import (
	"io"

	"leadintake/internal/domain/lead"
)

// EntityTypeLead tags uploads that belong to a lead.
const EntityTypeLead = "lead"

// Target says which record and document slot an upload belongs to.
// EntityID is a temporary correlation id while the lead does not exist yet.
type Target struct {
	EntityType   string
	EntityID     string
	DocumentType string
	Description  string
}

// File is a validated file ready to be forwarded to document storage
type File struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Stored is the document storage's record of a forwarded file
type Stored struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FilePath string `json:"filePath,omitempty"`
	FileName string `json:"fileName,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"fileSize,omitempty"`
}

// Location returns the URL the lead should reference, falling back to the file path.
func (s *Stored) Location() string {
	if s.URL != "" {
		return s.URL
	}
	return s.FilePath
}

// ToDocument converts the stored record into a draft document.
func (s *Stored) ToDocument(documentType string, file File) lead.Document {
	doc := lead.Document{
		DocumentType: documentType,
		URL:          s.Location(),
		FileName:     s.FileName,
		MimeType:     s.MimeType,
		FileSize:     s.Size,
	}
	if doc.FileName == "" {
		doc.FileName = file.Name
	}
	if doc.MimeType == "" {
		doc.MimeType = file.MimeType
	}
	if doc.FileSize == 0 {
		doc.FileSize = file.Size
	}
	return doc
}

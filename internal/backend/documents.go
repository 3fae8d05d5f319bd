package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"leadintake/internal/domain/upload"
)

// Store forwards a file to the backend's document storage.
func (c *Client) Store(ctx context.Context, target upload.Target, file upload.File) (*upload.Stored, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", file.MimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}

	fields := [][2]string{
		{"entityType", target.EntityType},
		{"entityId", target.EntityID},
		{"documentType", target.DocumentType},
		{"description", target.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		upload.Stored
		MongoID string `json:"_id"`
	}
	if err := c.do(req, "upload_document", &resp); err != nil {
		return nil, err
	}
	stored := resp.Stored
	if stored.ID == "" {
		stored.ID = resp.MongoID
	}
	return &stored, nil
}

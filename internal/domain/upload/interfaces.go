package upload

import "context"

// Storage is the external document storage service
type Storage interface {
	Store(ctx context.Context, target Target, file File) (*Stored, error)
}

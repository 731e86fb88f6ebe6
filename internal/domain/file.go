package domain

import (
	"context"
	"io"
	"time"
)

// File is the descriptor of an uploaded object.
type File struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ObjectKey   string    `json:"-"`
	Ext         string    `json:"ext"`
	Mime        string    `json:"mime"`
	Size        int64     `json:"size"`
	Width       *int      `json:"width,omitempty"`
	Height      *int      `json:"height,omitempty"`
	URL         string    `json:"url"`
	RelatedType *string   `json:"relatedType,omitempty"`
	RelatedID   *int64    `json:"relatedId,omitempty"`
	Field       *string   `json:"field,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

type FileRepository interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, id int64) (*File, error)
	Delete(ctx context.Context, id int64) error
}

// FileStorage persists object bytes and returns their public URL.
type FileStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

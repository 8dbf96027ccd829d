package store

import (
	"context"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

// Store holds the cinema document. Update is the only way to change it and
// runs its callback as one read-modify-write unit: concurrent Updates never
// interleave, and a callback error or a failed write leaves the stored
// document as it was.
type Store interface {
	View(ctx context.Context, fn func(doc *model.Document) error) error
	Update(ctx context.Context, fn func(doc *model.Document) error) error
	Close() error
}

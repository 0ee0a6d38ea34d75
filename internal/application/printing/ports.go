package printing

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/document"
	"github.com/printshop/backend/internal/domain/queue"
)

// ObjectStore is the blob store holding uploads, converted drafts and final files
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// Converter turns an uploaded source file into PDF bytes
type Converter interface {
	Convert(ctx context.Context, src []byte, sourceType string) ([]byte, error)
}

// ReceiptRenderer produces the printable PDF of a receipt
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, doc ReceiptDocument) ([]byte, error)
}

// Enqueuer schedules background work. EnqueueWith writes through the given
// store so the item commits with the surrounding transaction.
type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) (*queue.WorkItem, error)
	EnqueueWith(ctx context.Context, store queue.Store, task queue.Task) (*queue.WorkItem, error)
}

// Audience addresses a notification to a user or a shop
type Audience struct {
	Kind string
	ID   uuid.UUID
}

// Audience kinds
const (
	AudienceUser = "user"
	AudienceShop = "shop"
)

// UserAudience addresses a user
func UserAudience(id uuid.UUID) Audience { return Audience{Kind: AudienceUser, ID: id} }

// ShopAudience addresses a shop
func ShopAudience(id uuid.UUID) Audience { return Audience{Kind: AudienceShop, ID: id} }

// String renders the audience as "<kind>:<id>"
func (a Audience) String() string { return a.Kind + ":" + a.ID.String() }

// Notifier delivers best-effort notifications
type Notifier interface {
	Emit(ctx context.Context, audience Audience, event string, payload any) error
}

// DocumentLoader parses PDF bytes for the instruction engine
type DocumentLoader = document.Loader

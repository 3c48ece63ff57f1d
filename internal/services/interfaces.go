package services

import (
	"context"
	"time"

	domain "github.com/familyjustice/orders-api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	CaseData            = domain.CaseData
	ManageOrdersState   = domain.ManageOrdersState
	DraftOrder          = domain.DraftOrder
	OrderDetails        = domain.OrderDetails
	DraftOrderStore     = domain.DraftOrderStore
	FinalOrderStore     = domain.FinalOrderStore
	Document            = domain.Document
	OrderType           = domain.OrderType
	UserRole            = domain.UserRole
	OrderRecipient      = domain.OrderRecipient
	LanguagePreference  = domain.LanguagePreference
	LanguageRequirement = domain.LanguageRequirement
)

// OrderStores is the pair of updated collections returned by every lifecycle
// operation, suitable for merging back into the case aggregate.
type OrderStores struct {
	DraftOrders DraftOrderStore
	FinalOrders FinalOrderStore
}

// OrderLifecycleService builds draft orders, promotes them to issued orders,
// and files slip-rule amendments. The service holds no state between calls;
// everything lives on the case aggregate passed in and returned.
type OrderLifecycleService interface {
	BuildDraft(ctx context.Context, cmd BuildDraftCommand) (OrderStores, error)
	PromoteDraftToFinal(ctx context.Context, cmd PromoteDraftCommand) (OrderStores, error)
	FinaliseOrder(ctx context.Context, cmd FinaliseOrderCommand) (OrderStores, error)
	AmendIssuedOrder(ctx context.Context, cmd AmendOrderCommand) (OrderStores, error)
}

// BuildDraftCommand carries the case aggregate whose edit session is turned
// into a new draft order.
type BuildDraftCommand struct {
	Case CaseData
}

// PromoteDraftCommand promotes the draft matching the previewed document.
type PromoteDraftCommand struct {
	Case CaseData
}

// FinaliseOrderCommand finalises the in-session order directly, without going
// through the draft store.
type FinaliseOrderCommand struct {
	Case CaseData
}

// AmendOrderCommand applies a slip-rule correction to an issued order.
type AmendOrderCommand struct {
	Case CaseData
	Role UserRole
}

// RenderRequest asks the rendering collaborator for one generated document.
type RenderRequest struct {
	Template string
	FileName string
	Data     map[string]any
}

// RenderedDocument is the rendering service's description of a generated file.
type RenderedDocument struct {
	URL       string
	BinaryURL string
	Hash      string
}

// DocumentRenderer turns a template plus data bag into a stored document.
// Implementations wrap the external document-assembly service.
type DocumentRenderer interface {
	Render(ctx context.Context, req RenderRequest) (RenderedDocument, error)
}

// AmendmentStamper returns a stamped copy of an existing document's bytes.
type AmendmentStamper interface {
	Stamp(ctx context.Context, doc Document) ([]byte, error)
}

// FileStore persists generated binaries and returns the stored document reference.
type FileStore interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (Document, error)
}

// OrderEvent captures metadata for emitted order lifecycle events.
type OrderEvent struct {
	Type       string
	CaseID     string
	OrderID    string
	OrderType  OrderType
	ActorName  string
	OccurredAt time.Time
	Metadata   map[string]string
}

// OrderEventPublisher publishes order lifecycle events for downstream
// consumers such as the notification service.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

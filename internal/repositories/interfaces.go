package repositories

import (
	"context"

	"github.com/familyjustice/orders-api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation
// used by services and handlers.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CaseRepository loads and saves case records. Order list writes intentionally
// carry no precondition: the last writer wins, matching how concurrent tabs in
// the case management UI behave today.
type CaseRepository interface {
	// GetCase fetches the case record. Returns a RepositoryError with
	// IsNotFound when the case does not exist.
	GetCase(ctx context.Context, caseID string) (domain.CaseData, error)

	// SaveOrders overwrites the draft and final order lists together with the
	// manage-orders session state.
	SaveOrders(ctx context.Context, caseID string, update domain.OrdersUpdate) error
}

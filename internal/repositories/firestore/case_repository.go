package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/familyjustice/orders-api/internal/domain"
)

const defaultCaseCollection = "cases"

// CaseRepository persists case records in Firestore. One document per case,
// keyed by the CCD case identifier.
type CaseRepository struct {
	client     *firestore.Client
	collection string
}

// CaseRepositoryOption customises repository behaviour.
type CaseRepositoryOption func(*CaseRepository)

// WithCollection overrides the case collection name.
func WithCollection(name string) CaseRepositoryOption {
	return func(r *CaseRepository) {
		if strings.TrimSpace(name) != "" {
			r.collection = strings.TrimSpace(name)
		}
	}
}

// NewCaseRepository constructs a Firestore-backed case repository.
func NewCaseRepository(client *firestore.Client, opts ...CaseRepositoryOption) (*CaseRepository, error) {
	if client == nil {
		return nil, errors.New("case repository requires firestore client")
	}
	repo := &CaseRepository{client: client, collection: defaultCaseCollection}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

// GetCase fetches and decodes the case record.
func (r *CaseRepository) GetCase(ctx context.Context, caseID string) (domain.CaseData, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return domain.CaseData{}, errors.New("case repository: case id is required")
	}

	snap, err := r.client.Collection(r.collection).Doc(caseID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.CaseData{}, notFoundError("cases.get", caseID)
		}
		return domain.CaseData{}, wrapError("cases.get", err)
	}

	var record domain.CaseData
	if err := snap.DataTo(&record); err != nil {
		return domain.CaseData{}, wrapError("cases.get", err)
	}
	record.ID = caseID
	return record, nil
}

// SaveOrders merges the order stores and session state onto the case document.
// No read precondition is applied; concurrent writers race and the last write
// wins, mirroring the behaviour of the case management front end.
func (r *CaseRepository) SaveOrders(ctx context.Context, caseID string, update domain.OrdersUpdate) error {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return errors.New("case repository: case id is required")
	}

	_, err := r.client.Collection(r.collection).Doc(caseID).Set(ctx, map[string]any{
		"draftOrderCollection": update.DraftOrders,
		"orderCollection":      update.FinalOrders,
		"manageOrders":         update.ManageOrders,
	}, firestore.MergeAll)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return notFoundError("cases.save_orders", caseID)
		}
		return wrapError("cases.save_orders", err)
	}
	return nil
}

package domain

import (
	"slices"
	"strings"
	"time"
)

// Both order stores keep the invariant that records are ordered by creation
// timestamp descending (most recent first). Every mutating operation returns a
// re-sorted copy; callers merge the returned collection back into the case
// aggregate. Ties on equal timestamps keep insertion order (stable sort).

// DraftOrderStore is the ordered collection of draft orders on a case.
type DraftOrderStore []DraftOrder

// FinalOrderStore is the ordered collection of issued orders on a case.
type FinalOrderStore []OrderDetails

func sortByCreatedDesc[T any](items []T, createdAt func(T) time.Time) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return createdAt(b).Compare(createdAt(a))
	})
	return sorted
}

func draftCreatedAt(d DraftOrder) time.Time   { return d.OtherDetails.DateCreated }
func orderCreatedAt(o OrderDetails) time.Time { return o.DateCreated }

// Sorted returns the store ordered most-recent-first.
func (s DraftOrderStore) Sorted() DraftOrderStore {
	return sortByCreatedDesc(s, draftCreatedAt)
}

// Insert appends a draft and re-establishes the sort invariant.
func (s DraftOrderStore) Insert(draft DraftOrder) DraftOrderStore {
	return append(s.Sorted(), draft).Sorted()
}

// FindByID locates a draft by its record identifier.
func (s DraftOrderStore) FindByID(id string) (DraftOrder, int, bool) {
	for i, draft := range s {
		if draft.ID == id {
			return draft, i, true
		}
	}
	return DraftOrder{}, -1, false
}

// FindByDocumentFilename locates the first draft whose generated document
// (English or Welsh) carries the given filename.
func (s DraftOrderStore) FindByDocumentFilename(filename string) (DraftOrder, int, bool) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return DraftOrder{}, -1, false
	}
	for i, draft := range s {
		if documentHasFilename(draft.Document, filename) || documentHasFilename(draft.DocumentWelsh, filename) {
			return draft, i, true
		}
	}
	return DraftOrder{}, -1, false
}

// CountByDocumentFilename reports how many drafts carry the given filename.
// Used to detect (and log) filename collisions during promotion.
func (s DraftOrderStore) CountByDocumentFilename(filename string) int {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return 0
	}
	count := 0
	for _, draft := range s {
		if documentHasFilename(draft.Document, filename) || documentHasFilename(draft.DocumentWelsh, filename) {
			count++
		}
	}
	return count
}

// ReplaceAt substitutes the draft at index and re-sorts.
func (s DraftOrderStore) ReplaceAt(index int, draft DraftOrder) DraftOrderStore {
	if index < 0 || index >= len(s) {
		return s.Sorted()
	}
	replaced := slices.Clone(s)
	replaced[index] = draft
	return DraftOrderStore(replaced).Sorted()
}

// RemoveAt deletes the draft at index and re-sorts.
func (s DraftOrderStore) RemoveAt(index int) DraftOrderStore {
	if index < 0 || index >= len(s) {
		return s.Sorted()
	}
	removed := slices.Delete(slices.Clone(s), index, index+1)
	return DraftOrderStore(removed).Sorted()
}

// Sorted returns the store ordered most-recent-first.
func (s FinalOrderStore) Sorted() FinalOrderStore {
	return sortByCreatedDesc(s, orderCreatedAt)
}

// Insert appends an issued order and re-establishes the sort invariant.
func (s FinalOrderStore) Insert(order OrderDetails) FinalOrderStore {
	return append(s.Sorted(), order).Sorted()
}

// FindByID locates an issued order by its record identifier.
func (s FinalOrderStore) FindByID(id string) (OrderDetails, int, bool) {
	for i, order := range s {
		if order.ID == id {
			return order, i, true
		}
	}
	return OrderDetails{}, -1, false
}

// FindByDocumentFilename locates the first issued order whose document
// (English or Welsh) carries the given filename.
func (s FinalOrderStore) FindByDocumentFilename(filename string) (OrderDetails, int, bool) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return OrderDetails{}, -1, false
	}
	for i, order := range s {
		if documentHasFilename(order.Document, filename) || documentHasFilename(order.DocumentWelsh, filename) {
			return order, i, true
		}
	}
	return OrderDetails{}, -1, false
}

// ReplaceAt substitutes the order at index and re-sorts.
func (s FinalOrderStore) ReplaceAt(index int, order OrderDetails) FinalOrderStore {
	if index < 0 || index >= len(s) {
		return s.Sorted()
	}
	replaced := slices.Clone(s)
	replaced[index] = order
	return FinalOrderStore(replaced).Sorted()
}

// RemoveAt deletes the order at index and re-sorts.
func (s FinalOrderStore) RemoveAt(index int) FinalOrderStore {
	if index < 0 || index >= len(s) {
		return s.Sorted()
	}
	removed := slices.Delete(slices.Clone(s), index, index+1)
	return FinalOrderStore(removed).Sorted()
}

func documentHasFilename(doc *Document, filename string) bool {
	return doc != nil && doc.FileName == filename
}

package domain

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

func draftWithCreated(id string, created time.Time) DraftOrder {
	return DraftOrder{
		ID: id,
		Document: &Document{
			FileName: id + ".pdf",
		},
		OtherDetails: DraftOtherDetails{
			DateCreated: created,
			Status:      DraftStatusDraft,
		},
	}
}

func orderWithCreated(id string, created time.Time) OrderDetails {
	return OrderDetails{
		ID:          id,
		Document:    &Document{FileName: id + ".pdf"},
		DateCreated: created,
	}
}

func assertDraftsSortedDesc(t *testing.T, store DraftOrderStore) {
	t.Helper()
	for i := 1; i < len(store); i++ {
		prev := store[i-1].OtherDetails.DateCreated
		curr := store[i].OtherDetails.DateCreated
		if curr.After(prev) {
			t.Fatalf("store not sorted descending at index %d: %v before %v", i, prev, curr)
		}
	}
}

func assertOrdersSortedDesc(t *testing.T, store FinalOrderStore) {
	t.Helper()
	for i := 1; i < len(store); i++ {
		if store[i].DateCreated.After(store[i-1].DateCreated) {
			t.Fatalf("store not sorted descending at index %d", i)
		}
	}
}

func TestDraftOrderStoreSortInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	var store DraftOrderStore
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(store) == 0:
			created := base.Add(time.Duration(rng.Intn(100_000)) * time.Second)
			store = store.Insert(draftWithCreated(fmt.Sprintf("draft-%d", i), created))
		case op == 1:
			idx := rng.Intn(len(store))
			created := base.Add(time.Duration(rng.Intn(100_000)) * time.Second)
			store = store.ReplaceAt(idx, draftWithCreated(fmt.Sprintf("replaced-%d", i), created))
		case op == 2:
			store = store.RemoveAt(rng.Intn(len(store)))
		default:
			// Lookups must not disturb ordering.
			store.FindByDocumentFilename(fmt.Sprintf("draft-%d.pdf", rng.Intn(i+1)))
		}
		assertDraftsSortedDesc(t, store)
	}
}

func TestFinalOrderStoreSortInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	var store FinalOrderStore
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(store) == 0:
			created := base.Add(time.Duration(rng.Intn(100_000)) * time.Second)
			store = store.Insert(orderWithCreated(fmt.Sprintf("order-%d", i), created))
		case op == 1:
			idx := rng.Intn(len(store))
			created := base.Add(time.Duration(rng.Intn(100_000)) * time.Second)
			store = store.ReplaceAt(idx, orderWithCreated(fmt.Sprintf("replaced-%d", i), created))
		default:
			store = store.RemoveAt(rng.Intn(len(store)))
		}
		assertOrdersSortedDesc(t, store)
	}
}

func TestDraftOrderStoreInsertNewestFirst(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	store := DraftOrderStore{}.
		Insert(draftWithCreated("a", base)).
		Insert(draftWithCreated("b", base.Add(2*time.Hour))).
		Insert(draftWithCreated("c", base.Add(time.Hour)))

	got := []string{store[0].ID, store[1].ID, store[2].ID}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}
}

func TestDraftOrderStoreFindByDocumentFilename(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	welshDoc := &Document{FileName: "order-cy.pdf"}

	store := DraftOrderStore{}.Insert(draftWithCreated("a", base))
	withWelsh := draftWithCreated("b", base.Add(time.Minute))
	withWelsh.DocumentWelsh = welshDoc
	store = store.Insert(withWelsh)

	if _, _, ok := store.FindByDocumentFilename("missing.pdf"); ok {
		t.Fatal("expected no match for unknown filename")
	}
	if draft, _, ok := store.FindByDocumentFilename("a.pdf"); !ok || draft.ID != "a" {
		t.Fatalf("expected draft a, got %+v ok=%v", draft, ok)
	}
	if draft, _, ok := store.FindByDocumentFilename("order-cy.pdf"); !ok || draft.ID != "b" {
		t.Fatalf("expected Welsh document to match draft b, got %+v ok=%v", draft, ok)
	}
	if _, _, ok := store.FindByDocumentFilename("  "); ok {
		t.Fatal("blank filename must never match")
	}
}

func TestDraftOrderStoreCountByDocumentFilename(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	first := draftWithCreated("a", base)
	second := draftWithCreated("b", base.Add(time.Minute))
	second.Document.FileName = "a.pdf" // deliberate collision

	store := DraftOrderStore{}.Insert(first).Insert(second)
	if got := store.CountByDocumentFilename("a.pdf"); got != 2 {
		t.Fatalf("expected 2 colliding drafts, got %d", got)
	}
}

func TestStoreIndexBoundsAreNoOps(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	store := DraftOrderStore{}.Insert(draftWithCreated("a", base))

	if got := store.RemoveAt(5); len(got) != 1 {
		t.Fatalf("out-of-range RemoveAt must be a no-op, got %d items", len(got))
	}
	if got := store.ReplaceAt(-1, draftWithCreated("x", base)); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("out-of-range ReplaceAt must be a no-op, got %+v", got)
	}
}

func TestFinalOrderStoreEqualTimestampsKeepInsertionOrder(t *testing.T) {
	created := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	store := FinalOrderStore{}.
		Insert(orderWithCreated("first", created)).
		Insert(orderWithCreated("second", created))

	if store[0].ID != "first" || store[1].ID != "second" {
		t.Fatalf("stable sort expected to keep insertion order, got %s, %s", store[0].ID, store[1].ID)
	}
}

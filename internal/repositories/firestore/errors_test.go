package firestore

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/familyjustice/orders-api/internal/repositories"
)

func TestWrapErrorCategorisation(t *testing.T) {
	cases := []struct {
		name        string
		code        codes.Code
		notFound    bool
		conflict    bool
		unavailable bool
	}{
		{name: "not found", code: codes.NotFound, notFound: true},
		{name: "aborted", code: codes.Aborted, conflict: true},
		{name: "already exists", code: codes.AlreadyExists, conflict: true},
		{name: "unavailable", code: codes.Unavailable, unavailable: true},
		{name: "internal", code: codes.Internal, unavailable: true},
		{name: "unknown", code: codes.Unknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := wrapError("cases.get", status.Error(tc.code, "boom"))

			var repoErr repositories.RepositoryError
			if !errors.As(err, &repoErr) {
				t.Fatalf("wrapError did not produce a RepositoryError: %v", err)
			}
			if got := repoErr.IsNotFound(); got != tc.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tc.notFound)
			}
			if got := repoErr.IsConflict(); got != tc.conflict {
				t.Errorf("IsConflict = %v, want %v", got, tc.conflict)
			}
			if got := repoErr.IsUnavailable(); got != tc.unavailable {
				t.Errorf("IsUnavailable = %v, want %v", got, tc.unavailable)
			}
		})
	}
}

func TestWrapErrorPassesThroughCancellation(t *testing.T) {
	if err := wrapError("cases.get", context.Canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("wrapError(context.Canceled) = %v", err)
	}
	if err := wrapError("cases.get", status.Error(codes.DeadlineExceeded, "slow")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("wrapError(grpc deadline) = %v", err)
	}
	if err := wrapError("cases.get", nil); err != nil {
		t.Errorf("wrapError(nil) = %v", err)
	}
}

func TestNotFoundError(t *testing.T) {
	err := notFoundError("cases.get", "1234567890123456")
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		t.Fatalf("notFoundError = %v", err)
	}
}

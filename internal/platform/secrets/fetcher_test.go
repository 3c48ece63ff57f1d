package secrets

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeSecretClient struct {
	mu     sync.Mutex
	values map[string]string
	errs   map[string]error
	calls  map[string]int
}

func newFakeSecretClient() *fakeSecretClient {
	return &fakeSecretClient{
		values: make(map[string]string),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := req.GetName()
	f.calls[name]++
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if value, ok := f.values[name]; ok {
		return &secretmanagerpb.AccessSecretVersionResponse{
			Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
		}, nil
	}
	return nil, status.Error(codes.NotFound, "not found")
}

func (f *fakeSecretClient) Close() error { return nil }

func (f *fakeSecretClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func TestResolvePassesThroughLiterals(t *testing.T) {
	fetcher, err := NewFetcher(context.Background(), WithClient(newFakeSecretClient()))
	if err != nil {
		t.Fatalf("NewFetcher error = %v", err)
	}
	defer fetcher.Close()

	got, err := fetcher.Resolve(context.Background(), "plain-token")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if got != "plain-token" {
		t.Errorf("Resolve = %q, want plain-token", got)
	}
}

func TestResolveCachesRemoteValue(t *testing.T) {
	client := newFakeSecretClient()
	resource := "projects/family-orders/secrets/rendering-auth-token/versions/latest"
	client.values[resource] = "render-secret"

	fetcher, err := NewFetcher(context.Background(),
		WithClient(client),
		WithProject("family-orders"),
	)
	if err != nil {
		t.Fatalf("NewFetcher error = %v", err)
	}
	defer fetcher.Close()

	for i := 0; i < 2; i++ {
		got, err := fetcher.Resolve(context.Background(), "secret://rendering-auth-token")
		if err != nil {
			t.Fatalf("Resolve error = %v", err)
		}
		if got != "render-secret" {
			t.Fatalf("Resolve = %q, want render-secret", got)
		}
	}
	if calls := client.callCount(resource); calls != 1 {
		t.Errorf("remote calls = %d, want 1", calls)
	}
}

func TestResolveHonoursVersionSuffix(t *testing.T) {
	client := newFakeSecretClient()
	client.values["projects/family-orders/secrets/stamping-auth-token/versions/3"] = "v3"

	fetcher, err := NewFetcher(context.Background(),
		WithClient(client),
		WithProject("family-orders"),
	)
	if err != nil {
		t.Fatalf("NewFetcher error = %v", err)
	}
	defer fetcher.Close()

	got, err := fetcher.Resolve(context.Background(), "secret://stamping-auth-token@3")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if got != "v3" {
		t.Errorf("Resolve = %q, want v3", got)
	}
}

func TestResolveFallsBackOnPermissionDenied(t *testing.T) {
	client := newFakeSecretClient()
	client.errs["projects/family-orders/secrets/rendering-auth-token/versions/latest"] = status.Error(codes.PermissionDenied, "denied")

	fallback := filepath.Join(t.TempDir(), ".secrets.local")
	if err := os.WriteFile(fallback, []byte("# local only\nrendering-auth-token=local-secret\n"), 0o600); err != nil {
		t.Fatalf("write fallback: %v", err)
	}

	fetcher, err := NewFetcher(context.Background(),
		WithClient(client),
		WithProject("family-orders"),
		WithFallbackFile(fallback),
	)
	if err != nil {
		t.Fatalf("NewFetcher error = %v", err)
	}
	defer fetcher.Close()

	got, err := fetcher.Resolve(context.Background(), "secret://rendering-auth-token")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if got != "local-secret" {
		t.Errorf("Resolve = %q, want local-secret", got)
	}
}

func TestResolveNotFoundDoesNotFallBack(t *testing.T) {
	client := newFakeSecretClient()

	fallback := filepath.Join(t.TempDir(), ".secrets.local")
	if err := os.WriteFile(fallback, []byte("rendering-auth-token=local-secret\n"), 0o600); err != nil {
		t.Fatalf("write fallback: %v", err)
	}

	fetcher, err := NewFetcher(context.Background(),
		WithClient(client),
		WithProject("family-orders"),
		WithFallbackFile(fallback),
	)
	if err != nil {
		t.Fatalf("NewFetcher error = %v", err)
	}
	defer fetcher.Close()

	if _, err := fetcher.Resolve(context.Background(), "secret://rendering-auth-token"); err == nil {
		t.Fatal("Resolve expected error for missing remote secret")
	}
}

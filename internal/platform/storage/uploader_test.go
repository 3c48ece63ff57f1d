package storage

import (
	"context"
	"testing"
	"time"

	gcs "cloud.google.com/go/storage"
)

func TestNewUploaderValidation(t *testing.T) {
	if _, err := NewUploader(nil, "orders-docs"); err == nil {
		t.Error("NewUploader(nil client) expected error")
	}
	if _, err := NewUploader(&gcs.Client{}, "  "); err == nil {
		t.Error("NewUploader(blank bucket) expected error")
	}
}

func TestObjectPathEmbedsDateAndID(t *testing.T) {
	uploader, err := NewUploader(&gcs.Client{}, "orders-docs",
		WithClock(func() time.Time { return time.Date(2025, 5, 19, 10, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { return "01HZXTEST" }),
	)
	if err != nil {
		t.Fatalf("NewUploader error = %v", err)
	}

	got := uploader.objectPath("order-v1.pdf")
	want := "orders/2025/05/01HZXTEST/order-v1.pdf"
	if got != want {
		t.Errorf("objectPath = %q, want %q", got, want)
	}
}

func TestUploadRejectsEmptyInput(t *testing.T) {
	uploader, err := NewUploader(&gcs.Client{}, "orders-docs")
	if err != nil {
		t.Fatalf("NewUploader error = %v", err)
	}

	if _, err := uploader.Upload(context.Background(), nil, "order.pdf", "application/pdf"); err == nil {
		t.Error("Upload(no data) expected error")
	}
	if _, err := uploader.Upload(context.Background(), []byte("pdf"), "  ", "application/pdf"); err == nil {
		t.Error("Upload(blank file name) expected error")
	}
}

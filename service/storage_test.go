package service

import (
	"context"
	"testing"

	"github.com/kashvi5907-create/legalease/backend/config"
)

func TestNewArchiveService(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:   "localhost:9000",
		AccessKey:  "test",
		SecretKey:  "test",
		Bucket:     "test-bucket",
		UseSSL:     false,
		ExpireDays: 7,
	}

	svc, err := NewArchiveService(cfg)
	// Client creation does not connect; the first operation does.
	if err != nil {
		t.Fatalf("NewArchiveService failed: %v", err)
	}
	if svc == nil {
		t.Fatal("Expected non-nil service")
	}
	if svc.bucket != "test-bucket" {
		t.Errorf("Expected bucket 'test-bucket', got '%s'", svc.bucket)
	}
}

func TestNewArchiveServiceInvalidEndpoint(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:  "http://not a host",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "test",
	}

	if _, err := NewArchiveService(cfg); err == nil {
		t.Error("Expected error for malformed endpoint")
	}
}

func TestArchiveDocumentCancelledContext(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:   "localhost:9000",
		AccessKey:  "test",
		SecretKey:  "test",
		Bucket:     "test",
		ExpireDays: 7,
	}

	svc, err := NewArchiveService(cfg)
	if err != nil {
		t.Skip("Could not create archive service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.ArchiveDocument(ctx, "doc.pdf", []byte("%PDF")); err == nil {
		t.Error("Expected error with cancelled context")
	}
}

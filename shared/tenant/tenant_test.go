package tenant

import (
	"context"
	"errors"
	"testing"
)

func TestWithTenantRejectsEmptyID(t *testing.T) {
	_, err := WithTenant(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error for empty tenant id")
	}
}

func TestFromContextRoundtrip(t *testing.T) {
	ctx, err := WithTenant(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("WithTenant failed: %v", err)
	}

	tenantID, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("FromContext failed: %v", err)
	}
	if tenantID != "tenant-a" {
		t.Errorf("Expected tenant-a, got %s", tenantID)
	}
}

func TestFromContextMissingTenant(t *testing.T) {
	_, err := FromContext(context.Background())
	if !errors.Is(err, ErrMissingTenant) {
		t.Errorf("Expected ErrMissingTenant, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"redline/internal/domain"
	"redline/internal/domain/services"
)

func TestImproveTextSuccess(t *testing.T) {
	svc := NewImproveService(fakeImprover{}, testLogger())

	result, err := svc.ImproveText(context.Background(), &services.ImproveRequest{Text: "make it better"})
	if err != nil {
		t.Fatalf("ImproveText: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if result.Improved != "MAKE IT BETTER" {
		t.Errorf("improved = %q", result.Improved)
	}
	if result.Original != "make it better" {
		t.Errorf("original = %q", result.Original)
	}
	if result.Reason == "" {
		t.Error("reason should carry the model's explanation")
	}
}

func TestImproveTextModelFailureIsNonSuccess(t *testing.T) {
	svc := NewImproveService(fakeImprover{fail: true}, testLogger())

	result, err := svc.ImproveText(context.Background(), &services.ImproveRequest{Text: "text"})
	if err != nil {
		t.Fatalf("ImproveText: %v", err)
	}
	if result.Success {
		t.Error("expected non-success on model failure")
	}
	if result.Improved != "text" {
		t.Errorf("improved should fall back to original, got %q", result.Improved)
	}
}

func TestImproveTextEmptyRejected(t *testing.T) {
	svc := NewImproveService(fakeImprover{}, testLogger())

	_, err := svc.ImproveText(context.Background(), &services.ImproveRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

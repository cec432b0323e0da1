package controllers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/controllers"
	"github.com/bionicotaku/lingo-services-media/internal/metadata"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
)

func TestBaseHandlerExtractMetadata(t *testing.T) {
	header := http.Header{}
	header.Set("x-md-global-user-id", "  9f1b6a0e-8f2d-4d3c-9a5b-1c2d3e4f5a6b ")
	header.Set("x-md-idempotency-key", "req-456")
	header.Set("x-md-if-match", "etag-1")
	header.Set("x-md-if-none-match", "etag-0")

	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{})
	meta := handler.ExtractMetadata(header)

	if meta.UserID != "9f1b6a0e-8f2d-4d3c-9a5b-1c2d3e4f5a6b" {
		t.Fatalf("expected trimmed user id, got %q", meta.UserID)
	}
	if meta.IdempotencyKey != "req-456" {
		t.Fatalf("expected idempotency key req-456, got %q", meta.IdempotencyKey)
	}
	if meta.IfMatch != "etag-1" || meta.IfNoneMatch != "etag-0" {
		t.Fatalf("conditional headers mismatch: %+v", meta)
	}

	ctx := metadata.Inject(context.Background(), meta)
	stored, ok := metadata.FromContext(ctx)
	if !ok {
		t.Fatal("expected metadata in context")
	}
	if stored != meta {
		t.Fatalf("stored metadata mismatch: %+v vs %+v", stored, meta)
	}
}

func TestBaseHandlerRequireUser(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{})

	want := uuid.New()
	header := http.Header{}
	header.Set("x-md-global-user-id", want.String())

	got, err := handler.RequireUser(header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("user id mismatch: %s vs %s", got, want)
	}
}

func TestBaseHandlerRequireUserMissing(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{})

	_, err := handler.RequireUser(http.Header{})
	if err == nil {
		t.Fatal("expected error for missing identity")
	}
	if code := errors.Code(err); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestBaseHandlerRequireUserMalformed(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{})

	header := http.Header{}
	header.Set("x-md-global-user-id", "not-a-uuid")

	_, err := handler.RequireUser(header)
	if code := errors.Code(err); code != 400 {
		t.Fatalf("expected 400 for malformed identity, got %d (%v)", code, err)
	}
}

func TestBaseHandlerOptionalUser(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{})

	userID, err := handler.OptionalUser(http.Header{})
	if err != nil || userID != uuid.Nil {
		t.Fatalf("missing header should yield nil user: %s, %v", userID, err)
	}

	header := http.Header{}
	header.Set("x-md-global-user-id", "garbage")
	if _, err := handler.OptionalUser(header); err == nil {
		t.Fatal("expected error for malformed optional identity")
	}
}

func TestBaseHandlerWithTimeout(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{Command: 200 * time.Millisecond})
	ctx, cancel := handler.WithTimeout(context.Background(), controllers.HandlerTypeCommand)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline to be set")
	}
	remaining := time.Until(deadline)
	if remaining < 150*time.Millisecond || remaining > 250*time.Millisecond {
		t.Fatalf("expected timeout near 200ms, got %v", remaining)
	}
}

func TestBaseHandlerTimeoutFallbacks(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{Command: time.Second})

	// Default 为空时回退到 Command。
	ctx, cancel := handler.WithTimeout(context.Background(), controllers.HandlerTypeDefault)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected fallback deadline")
	}
	if remaining := time.Until(deadline); remaining > time.Second+50*time.Millisecond {
		t.Fatalf("default should inherit command timeout, got %v", remaining)
	}

	uploadCtx, uploadCancel := handler.WithTimeout(context.Background(), controllers.HandlerTypeUpload)
	defer uploadCancel()
	uploadDeadline, ok := uploadCtx.Deadline()
	if !ok {
		t.Fatal("expected upload deadline")
	}
	if remaining := time.Until(uploadDeadline); remaining < time.Minute {
		t.Fatalf("upload fallback should be generous, got %v", remaining)
	}
}

func TestBaseHandlerPrepareContext(t *testing.T) {
	handler := controllers.NewBaseHandler(controllers.HandlerTimeouts{Query: 300 * time.Millisecond})

	header := http.Header{}
	header.Set("x-md-global-user-id", uuid.New().String())

	ctx, cancel := handler.PrepareContext(context.Background(), header, controllers.HandlerTypeQuery)
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected deadline from query timeout")
	}
	meta, ok := metadata.FromContext(ctx)
	if !ok || meta.UserID == "" {
		t.Fatal("expected injected metadata with user id")
	}
}

package users

import (
	"context"
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestStoreCRUDLifecycle(t *testing.T) {
	mock := newMockDynamo()
	s := NewStore(mock, "users-table")
	ctx := context.Background()

	created, err := s.Create(ctx, User{UserID: "42", Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set: %+v", created)
	}

	// duplicate id
	if _, err := s.Create(ctx, User{UserID: "42", Name: "Ada", Email: "ada@example.com"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := s.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil || got.Name != "Ada" || got.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	missing, err := s.Get(ctx, "999")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}

	updated, err := s.Update(ctx, "42", UpdateUserInput{Email: strPtr("ada@new.example.com")})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Email != "ada@new.example.com" {
		t.Fatalf("email not updated: %+v", updated)
	}
	if updated.Name != "Ada" {
		t.Fatalf("name should be unchanged: %+v", updated)
	}

	if _, err := s.Update(ctx, "999", UpdateUserInput{Name: strPtr("nobody")}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 user, got %d", len(list))
	}

	if err := s.Delete(ctx, "42"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, "42"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestStoreResolve(t *testing.T) {
	mock := newMockDynamo()
	s := NewStore(mock, "users-table")
	ctx := context.Background()

	if _, err := s.Create(ctx, User{UserID: "42", Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	resolved, err := s.Resolve(ctx, "42")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if resolved == nil || resolved.ID != "42" {
		t.Fatalf("unexpected resolved user: %+v", resolved)
	}

	absent, err := s.Resolve(ctx, "999")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected nil for unknown user, got %+v", absent)
	}
}

func TestStoreSurfacesClientErrors(t *testing.T) {
	mock := newMockDynamo()
	mock.failWith = errors.New("dynamo down")
	s := NewStore(mock, "users-table")
	ctx := context.Background()

	if _, err := s.Get(ctx, "42"); err == nil {
		t.Fatal("expected error from Get")
	}
	if _, err := s.Resolve(ctx, "42"); err == nil {
		t.Fatal("expected error from Resolve")
	}
	if _, err := s.List(ctx); err == nil {
		t.Fatal("expected error from List")
	}
}

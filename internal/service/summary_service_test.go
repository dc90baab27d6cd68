package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"notevi/internal/entity"
)

func TestSummaryCreateStoresDocument(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	summary, err := env.summaries.Create(ctx, actorFor(alice), "Calculus", true, Upload{
		Filename: "calculus week 1.md",
		Data:     []byte("# Derivatives"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if summary.Name != "Calculus" {
		t.Errorf("name = %q", summary.Name)
	}
	exists, err := env.store.Exists(ctx, summary.Path)
	if err != nil || !exists {
		t.Errorf("document not stored at %s (err=%v)", summary.Path, err)
	}

	// Missing name falls back to the filename
	unnamed, err := env.summaries.Create(ctx, actorFor(alice), "  ", false, Upload{
		Filename: "notes.txt",
		Data:     []byte("text"),
	})
	if err != nil {
		t.Fatalf("Create unnamed: %v", err)
	}
	if unnamed.Name != "notes.txt" {
		t.Errorf("fallback name = %q", unnamed.Name)
	}
}

func TestSummaryCreateRejectsBadExtension(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")

	_, err := env.summaries.Create(context.Background(), actorFor(alice), "bad", false, Upload{
		Filename: "malware.exe",
		Data:     []byte("bin"),
	})
	if !errors.Is(err, ErrFileTypeNotAllowed) {
		t.Errorf("got %v, want ErrFileTypeNotAllowed", err)
	}
}

func TestSummaryRenameMarksEdited(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	summary, err := env.summaries.Create(ctx, actorFor(alice), "Algebra", false, Upload{
		Filename: "algebra.pdf",
		Data:     []byte("pdf"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Linear Algebra"
	updated, err := env.summaries.Update(ctx, actorFor(alice), summary.ID, &entity.SummaryUpdateRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Linear Algebra (edited)" {
		t.Errorf("name = %q", updated.Name)
	}

	again, err := env.summaries.Update(ctx, actorFor(alice), summary.ID, &entity.SummaryUpdateRequest{Name: &updated.Name})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if again.Name != "Linear Algebra (edited)" {
		t.Errorf("marker stacked: %q", again.Name)
	}
}

func TestSummaryVisibilityAndAuthorisation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	private, err := env.summaries.Create(ctx, actorFor(alice), "secret", false, Upload{
		Filename: "secret.md", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.summaries.Get(ctx, actorFor(bob), private.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("private summary for stranger: got %v, want ErrForbidden", err)
	}

	isPublic := true
	if _, err := env.summaries.Update(ctx, actorFor(bob), private.ID, &entity.SummaryUpdateRequest{IsPublic: &isPublic}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-author update: got %v, want ErrForbidden", err)
	}
	if err := env.summaries.Delete(ctx, actorFor(bob), private.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-author delete: got %v, want ErrForbidden", err)
	}
}

func TestSummaryAddImagesCleansFilesOnInsertFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	summary, err := env.summaries.Create(ctx, actorFor(alice), "pics", false, Upload{
		Filename: "pics.md", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	taken := fmt.Sprintf("%d/pic.png", alice.ID)
	if err := env.repo.AddSummaryImages(ctx, []entity.DbSummaryImage{{Path: taken, SummaryID: summary.ID}}); err != nil {
		t.Fatalf("seed conflicting image row: %v", err)
	}

	if _, err := env.summaries.AddImages(ctx, actorFor(alice), summary.ID, []Upload{
		{Filename: "pic.png", Data: []byte("x")},
	}); err == nil {
		t.Fatal("expected insert to fail on the duplicate path")
	}

	if exists, err := env.store.Exists(ctx, taken); err != nil || exists {
		t.Errorf("orphaned file left behind (exists=%v err=%v)", exists, err)
	}
}

func TestSummaryDeleteCleansStorage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	summary, err := env.summaries.Create(ctx, actorFor(alice), "doomed", false, Upload{
		Filename: "doomed.md", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	images, err := env.summaries.AddImages(ctx, actorFor(alice), summary.ID, []Upload{
		{Filename: "fig.png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("AddImages: %v", err)
	}

	if err := env.summaries.Delete(ctx, actorFor(alice), summary.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if exists, _ := env.store.Exists(ctx, summary.Path); exists {
		t.Error("document file still present after delete")
	}
	if exists, _ := env.store.Exists(ctx, images[0].Path); exists {
		t.Error("image file still present after delete")
	}
	if _, err := env.summaries.Get(ctx, actorFor(alice), summary.ID); !errors.Is(err, ErrSummaryNotFound) {
		t.Errorf("got %v, want ErrSummaryNotFound", err)
	}
}

func TestSummaryFavorites(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	summary, err := env.summaries.Create(ctx, actorFor(alice), "shared", true, Upload{
		Filename: "shared.md", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.summaries.Favorite(ctx, actorFor(bob), summary.ID); err != nil {
		t.Fatalf("Favorite: %v", err)
	}
	if err := env.summaries.Favorite(ctx, actorFor(bob), summary.ID); !errors.Is(err, ErrAlreadyFavorited) {
		t.Fatalf("duplicate Favorite: got %v, want ErrAlreadyFavorited", err)
	}

	favorites, err := env.summaries.ListFavorites(ctx, actorFor(bob))
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != summary.ID {
		t.Fatalf("favorites = %v", favorites)
	}

	if err := env.summaries.Unfavorite(ctx, actorFor(bob), summary.ID); err != nil {
		t.Fatalf("Unfavorite: %v", err)
	}
	if err := env.summaries.Unfavorite(ctx, actorFor(bob), summary.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("second Unfavorite: got %v, want ErrFavoriteNotFound", err)
	}
}

func TestSummaryDocumentCollision(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	first, err := env.summaries.Create(ctx, actorFor(alice), "v1", false, Upload{
		Filename: "report.md", Data: []byte("one"),
	})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := env.summaries.Create(ctx, actorFor(alice), "v2", false, Upload{
		Filename: "report.md", Data: []byte("two"),
	})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.Path == second.Path {
		t.Errorf("paths collide: %s", first.Path)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"notevi/internal/entity"
)

func TestNoteVisibility(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	private, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "secret"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	public, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "open", IsPublic: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.notes.Get(ctx, actorFor(bob), private.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("private note for stranger: got %v, want ErrForbidden", err)
	}
	if _, err := env.notes.Get(ctx, actorFor(bob), public.ID); err != nil {
		t.Errorf("public note for stranger: %v", err)
	}
	if _, err := env.notes.Get(ctx, actorFor(alice), private.ID); err != nil {
		t.Errorf("private note for author: %v", err)
	}

	super := env.makeSuperuser(t, env.registerUser(t, "root@example.com", "root"))
	if _, err := env.notes.Get(ctx, super, private.ID); err != nil {
		t.Errorf("private note for superuser: %v", err)
	}
}

func TestNoteListFilters(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	mustCreate := func(actor Actor, title string, isPublic bool) {
		t.Helper()
		if _, err := env.notes.Create(ctx, actor, &entity.NoteCreateRequest{Title: title, IsPublic: isPublic}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}
	mustCreate(actorFor(alice), "alice private", false)
	mustCreate(actorFor(alice), "alice public", true)
	mustCreate(actorFor(bob), "bob public", true)

	// Bob sees both public notes and misses alice's private one
	all, err := env.notes.List(ctx, actorFor(bob), &entity.DocumentQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("bob sees %d notes, want 2", len(all))
	}

	// Filter by author username
	aliceOnly, err := env.notes.List(ctx, actorFor(bob), &entity.DocumentQuery{Username: "alice"})
	if err != nil {
		t.Fatalf("List by username: %v", err)
	}
	if len(aliceOnly) != 1 || aliceOnly[0].Title != "alice public" {
		t.Errorf("filter by username returned %d notes", len(aliceOnly))
	}

	// Author sees their own private notes
	own, err := env.notes.List(ctx, actorFor(alice), &entity.DocumentQuery{AuthorID: &alice.ID})
	if err != nil {
		t.Fatalf("List own: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("alice sees %d own notes, want 2", len(own))
	}

	// is_public filter intersects with visibility
	isPublic := false
	privateOnly, err := env.notes.List(ctx, actorFor(bob), &entity.DocumentQuery{IsPublic: &isPublic})
	if err != nil {
		t.Fatalf("List private: %v", err)
	}
	if len(privateOnly) != 0 {
		t.Errorf("bob sees %d private notes of others, want 0", len(privateOnly))
	}
}

func TestNoteUpdateMarksEdited(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	note, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "draft"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "final"
	updated, err := env.notes.Update(ctx, actorFor(alice), note.ID, &entity.NoteUpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "final (edited)" {
		t.Errorf("title = %q, want %q", updated.Title, "final (edited)")
	}

	// Renaming again does not stack the marker
	again, err := env.notes.Update(ctx, actorFor(alice), note.ID, &entity.NoteUpdateRequest{Title: &updated.Title})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if again.Title != "final (edited)" {
		t.Errorf("title after second rename = %q", again.Title)
	}

	// Updating other fields leaves the title alone
	text := "body"
	noTitle, err := env.notes.Update(ctx, actorFor(alice), note.ID, &entity.NoteUpdateRequest{Text: &text})
	if err != nil {
		t.Fatalf("text Update: %v", err)
	}
	if noTitle.Title != "final (edited)" {
		t.Errorf("title changed by text update: %q", noTitle.Title)
	}
	if noTitle.Text != "body" {
		t.Errorf("text = %q", noTitle.Text)
	}
}

func TestNoteUpdateAuthorisation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	note, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "mine", IsPublic: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "stolen"
	if _, err := env.notes.Update(ctx, actorFor(bob), note.ID, &entity.NoteUpdateRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-author update: got %v, want ErrForbidden", err)
	}
	if err := env.notes.Delete(ctx, actorFor(bob), note.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-author delete: got %v, want ErrForbidden", err)
	}

	super := env.makeSuperuser(t, env.registerUser(t, "root@example.com", "root"))
	if _, err := env.notes.Update(ctx, super, note.ID, &entity.NoteUpdateRequest{Title: &title}); err != nil {
		t.Errorf("superuser update: %v", err)
	}
	if err := env.notes.Delete(ctx, super, note.ID); err != nil {
		t.Errorf("superuser delete: %v", err)
	}
}

func TestNoteImages(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	note, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "with pics"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// One bad extension rejects the whole batch before anything is written
	_, err = env.notes.AddImages(ctx, actorFor(alice), note.ID, []Upload{
		{Filename: "ok.png", Data: []byte("png")},
		{Filename: "evil.exe", Data: []byte("bin")},
	})
	if !errors.Is(err, ErrFileTypeNotAllowed) {
		t.Fatalf("mixed batch: got %v, want ErrFileTypeNotAllowed", err)
	}
	if exists, _ := env.store.Exists(ctx, "1/ok.png"); exists {
		t.Error("rejected batch must not write files")
	}

	images, err := env.notes.AddImages(ctx, actorFor(alice), note.ID, []Upload{
		{Filename: "a.png", Data: []byte("one")},
		{Filename: "b.jpg", Data: []byte("two")},
	})
	if err != nil {
		t.Fatalf("AddImages: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	for _, image := range images {
		exists, err := env.store.Exists(ctx, image.Path)
		if err != nil || !exists {
			t.Errorf("image file %s missing (err=%v)", image.Path, err)
		}
	}

	// Image delete checks ownership through the parent note
	bob := env.registerUser(t, "bob@example.com", "bob")
	if err := env.notes.DeleteImage(ctx, actorFor(bob), images[0].ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger image delete: got %v, want ErrForbidden", err)
	}
	if err := env.notes.DeleteImage(ctx, actorFor(alice), images[0].ID); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if exists, _ := env.store.Exists(ctx, images[0].Path); exists {
		t.Error("deleted image file still present")
	}
}

func TestNoteAddImagesCleansFilesOnInsertFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	note, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "pics"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Occupy the path the upload resolves to, without a file on disk, so the
	// insert hits the unique index after the file is written.
	taken := fmt.Sprintf("%d/pic.png", alice.ID)
	if err := env.repo.AddNoteImages(ctx, []entity.DbNoteImage{{Path: taken, NoteID: note.ID}}); err != nil {
		t.Fatalf("seed conflicting image row: %v", err)
	}

	if _, err := env.notes.AddImages(ctx, actorFor(alice), note.ID, []Upload{
		{Filename: "pic.png", Data: []byte("x")},
	}); err == nil {
		t.Fatal("expected insert to fail on the duplicate path")
	}

	if exists, err := env.store.Exists(ctx, taken); err != nil || exists {
		t.Errorf("orphaned file left behind (exists=%v err=%v)", exists, err)
	}
}

func TestNoteDeleteCleansImages(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	ctx := context.Background()

	note, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "with pics"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	images, err := env.notes.AddImages(ctx, actorFor(alice), note.ID, []Upload{
		{Filename: "a.png", Data: []byte("one")},
	})
	if err != nil {
		t.Fatalf("AddImages: %v", err)
	}

	if err := env.notes.Delete(ctx, actorFor(alice), note.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if exists, _ := env.store.Exists(ctx, images[0].Path); exists {
		t.Error("note delete should remove image files")
	}
	if _, err := env.notes.Get(ctx, actorFor(alice), note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("got %v, want ErrNoteNotFound", err)
	}
}

func TestNoteFavorites(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")
	ctx := context.Background()

	note, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "liked", IsPublic: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.notes.Favorite(ctx, actorFor(bob), note.ID); err != nil {
		t.Fatalf("Favorite: %v", err)
	}
	// Favoriting twice surfaces the conflict without changing state
	if err := env.notes.Favorite(ctx, actorFor(bob), note.ID); !errors.Is(err, ErrAlreadyFavorited) {
		t.Fatalf("second Favorite: got %v, want ErrAlreadyFavorited", err)
	}

	favorites, err := env.notes.ListFavorites(ctx, actorFor(bob))
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != note.ID {
		t.Fatalf("favorites = %v", favorites)
	}

	if err := env.notes.Unfavorite(ctx, actorFor(bob), note.ID); err != nil {
		t.Fatalf("Unfavorite: %v", err)
	}
	if err := env.notes.Unfavorite(ctx, actorFor(bob), note.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("second Unfavorite: got %v, want ErrFavoriteNotFound", err)
	}

	// Private notes of others cannot be favorited
	private, err := env.notes.Create(ctx, actorFor(alice), &entity.NoteCreateRequest{Title: "hidden"})
	if err != nil {
		t.Fatalf("Create private: %v", err)
	}
	if err := env.notes.Favorite(ctx, actorFor(bob), private.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("favorite private: got %v, want ErrForbidden", err)
	}
}

func TestFavoriteMissingNote(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com", "alice")

	if err := env.notes.Favorite(context.Background(), actorFor(alice), 404); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("got %v, want ErrNoteNotFound", err)
	}
}

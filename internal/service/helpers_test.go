package service

import (
	"context"
	"path/filepath"
	"testing"

	"notevi/internal/config"
	"notevi/internal/entity"
	"notevi/internal/mailer"
	"notevi/internal/model"
	"notevi/internal/storage"
)

// testEnv wires the service layer against a throwaway sqlite database and a
// temp-dir storage backend.
type testEnv struct {
	cfg       config.Config
	repo      model.Repository
	store     *storage.LocalStorage
	users     *UserService
	verify    *VerifyService
	notes     *NoteService
	summaries *SummaryService
	files     *FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		DBType:                     "sqlite",
		DBPath:                     filepath.Join(dir, "test.db"),
		RoleDefault:                "user",
		PasswordMinLen:             8,
		PasswordMaxLen:             128,
		AllowedImageExts:           []string{"png", "jpg", "jpeg", "gif", "webp"},
		AllowedDocumentExts:        []string{"md", "markdown", "txt", "pdf"},
		EmailEnabled:               false,
		JWTSecret:                  "test-secret",
		VerifyTokenLifetimeMinutes: 60,
	}

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		t.Fatalf("InitRepository: %v", err)
	}
	if err := model.SeedDefaultRoles(context.Background(), repo); err != nil {
		t.Fatalf("SeedDefaultRoles: %v", err)
	}

	store, err := storage.NewLocalStorage(filepath.Join(dir, "static"))
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	publisher := mailer.NewPublisher(cfg)
	verify, err := NewVerifyService(cfg, repo, publisher)
	if err != nil {
		t.Fatalf("NewVerifyService: %v", err)
	}

	return &testEnv{
		cfg:       cfg,
		repo:      repo,
		store:     store,
		users:     NewUserService(cfg, repo, publisher),
		verify:    verify,
		notes:     NewNoteService(cfg, repo, store),
		summaries: NewSummaryService(cfg, repo, store),
		files:     NewFileService(cfg, repo, store),
	}
}

// registerUser creates an account through the normal registration path.
func (env *testEnv) registerUser(t *testing.T, email, username string) *entity.DbUser {
	t.Helper()
	user, err := env.users.Register(context.Background(), &entity.RegisterRequest{
		Email:    email,
		Username: username,
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return user
}

// makeSuperuser promotes a user directly in the repository.
func (env *testEnv) makeSuperuser(t *testing.T, user *entity.DbUser) Actor {
	t.Helper()
	ctx := context.Background()
	role, err := env.repo.GetRoleByName(ctx, "superuser")
	if err != nil {
		t.Fatalf("GetRoleByName(superuser): %v", err)
	}
	if err := env.repo.UpdateUser(ctx, user.ID, entity.UserUpdates{RoleID: &role.ID}); err != nil {
		t.Fatalf("UpdateUser role: %v", err)
	}
	return Actor{ID: user.ID, Username: user.Username, Permission: entity.PermissionSuperuser, IsSuperuser: true}
}

func actorFor(user *entity.DbUser) Actor {
	actor := Actor{
		ID:         user.ID,
		Username:   user.Username,
		IsVerified: user.IsVerified,
	}
	if user.Role != nil {
		actor.Permission = user.Role.Permission
	}
	actor.IsSuperuser = user.IsSuperuser
	return actor
}

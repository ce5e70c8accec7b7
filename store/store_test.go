package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/material-forms/api/config"
	"github.com/material-forms/api/database"
	"github.com/material-forms/api/model"
)

func testStore(t *testing.T) Store {
	t.Helper()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db)
}

func testUser(t *testing.T, st Store) model.User {
	t.Helper()

	user, err := st.Users.Create(context.Background(), "Alice", "alice@example.com", []byte("hash"))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestUsers(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	user := testUser(t, st)
	if user.ID == "" {
		t.Fatal("user id not assigned")
	}

	byEmail, err := st.Users.ByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.Name != "Alice" {
		t.Errorf("ByEmail = %+v, want created user", byEmail)
	}

	byID, err := st.Users.ByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if string(byID.PasswordHash) != "hash" {
		t.Errorf("password hash = %q, want stored hash", byID.PasswordHash)
	}

	_, err = st.Users.ByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}

	_, err = st.Users.Create(ctx, "Alice II", "alice@example.com", []byte("other"))
	if err == nil {
		t.Error("duplicate email must fail")
	}
}

func TestFormDefaultsAndLookup(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	user := testUser(t, st)

	form, err := st.Forms.Create(ctx, user.ID, model.DefaultFormTitle, nil, model.DefaultThemeColor)
	if err != nil {
		t.Fatalf("create form: %v", err)
	}

	loaded, err := st.Forms.ByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if loaded.Status != model.StatusDraft {
		t.Errorf("status = %s, want draft", loaded.Status)
	}
	if loaded.Title != "Untitled Form" || loaded.ThemeColor != "#6750A4" {
		t.Errorf("defaults = %q/%q", loaded.Title, loaded.ThemeColor)
	}
	if len(loaded.Questions) != 0 {
		t.Errorf("questions = %v, want empty", loaded.Questions)
	}
	if loaded.ResponseCount != 0 {
		t.Errorf("responseCount = %d, want 0", loaded.ResponseCount)
	}
	if loaded.Description != nil {
		t.Errorf("description = %v, want nil", *loaded.Description)
	}

	_, err = st.Forms.ByID(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing form error = %v, want ErrNotFound", err)
	}
}

func TestFormUpdatePersistsQuestions(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	user := testUser(t, st)

	form, _ := st.Forms.Create(ctx, user.ID, "Survey", nil, model.DefaultThemeColor)
	form.Questions = []model.Question{
		{ID: "q1", Type: model.MultipleChoice, Title: "Pick", Required: true, Options: []model.Option{
			{ID: "o1", Label: "Red"},
		}},
	}
	desc := "A survey"
	form.Description = &desc

	if err := st.Forms.Update(ctx, form); err != nil {
		t.Fatalf("update: %v", err)
	}

	loaded, err := st.Forms.ByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if len(loaded.Questions) != 1 || loaded.Questions[0].Options[0].Label != "Red" {
		t.Errorf("questions = %+v, want persisted question", loaded.Questions)
	}
	if loaded.Description == nil || *loaded.Description != "A survey" {
		t.Errorf("description not persisted: %v", loaded.Description)
	}
	if !loaded.UpdatedAt.After(form.CreatedAt) {
		t.Errorf("updated_at %v not after created_at %v", loaded.UpdatedAt, form.CreatedAt)
	}
}

func TestFormStatusAndOwnerListing(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	user := testUser(t, st)

	first, _ := st.Forms.Create(ctx, user.ID, "First", nil, model.DefaultThemeColor)
	second, _ := st.Forms.Create(ctx, user.ID, "Second", nil, model.DefaultThemeColor)

	if err := st.Forms.SetStatus(ctx, first.ID, model.StatusPublished); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	forms, err := st.Forms.ByOwner(ctx, user.ID)
	if err != nil {
		t.Fatalf("ByOwner: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("got %d forms, want 2", len(forms))
	}
	// most recently touched first
	if forms[0].ID != first.ID {
		t.Errorf("order = %s,%s; want the just-published form first", forms[0].Title, forms[1].Title)
	}
	if forms[0].Status != model.StatusPublished {
		t.Errorf("status = %s, want published", forms[0].Status)
	}
	_ = second

	err = st.Forms.SetStatus(ctx, "missing", model.StatusClosed)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing form error = %v, want ErrNotFound", err)
	}
}

func TestSubmissionsRoundTripAndCascade(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	user := testUser(t, st)

	form, _ := st.Forms.Create(ctx, user.ID, "Survey", nil, model.DefaultThemeColor)

	answers := model.Answers{
		"q1": model.StringValue("o1"),
		"q2": model.ListValue("a", "b"),
	}
	sub, err := st.Submissions.Create(ctx, form.ID, answers)
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	if sub.ID == "" {
		t.Fatal("submission id not assigned")
	}

	st.Submissions.Create(ctx, form.ID, model.Answers{"q1": model.StringValue("o2")})

	subs, err := st.Submissions.ByForm(ctx, form.ID)
	if err != nil {
		t.Fatalf("ByForm: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d submissions, want 2", len(subs))
	}
	for i := 1; i < len(subs); i++ {
		if subs[i].SubmittedAt.Before(subs[i-1].SubmittedAt) {
			t.Error("submissions not in ascending time order")
		}
	}

	got := subs[0].Answers
	if v := got["q1"]; v.IsList || v.Single != "o1" {
		t.Errorf("q1 = %+v, want string o1", v)
	}
	if v := got["q2"]; !v.IsList || len(v.Multi) != 2 {
		t.Errorf("q2 = %+v, want 2-element list", v)
	}

	loaded, _ := st.Forms.ByID(ctx, form.ID)
	if loaded.ResponseCount != 2 {
		t.Errorf("responseCount = %d, want 2", loaded.ResponseCount)
	}

	if err := st.Forms.Delete(ctx, form.ID); err != nil {
		t.Fatalf("delete form: %v", err)
	}
	subs, err = st.Submissions.ByForm(ctx, form.ID)
	if err != nil {
		t.Fatalf("ByForm after delete: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("submissions survived the cascade: %d left", len(subs))
	}

	if err := st.Forms.Delete(ctx, form.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

// The cascade must hold on every pooled connection, not just the first one
// handed out. Pinning a connection forces the delete onto a different one.
func TestCascadeOnSecondPooledConnection(t *testing.T) {
	ctx := context.Background()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	st := New(db)

	user := testUser(t, st)
	form, _ := st.Forms.Create(ctx, user.ID, "Survey", nil, model.DefaultThemeColor)
	if _, err := st.Submissions.Create(ctx, form.ID, model.Answers{"q1": model.StringValue("o1")}); err != nil {
		t.Fatalf("create submission: %v", err)
	}

	pinned, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("pin connection: %v", err)
	}
	defer pinned.Close()

	var fk int
	if err := pinned.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if fk != 1 {
		t.Fatal("foreign_keys off on pinned connection")
	}

	if err := st.Forms.Delete(ctx, form.ID); err != nil {
		t.Fatalf("delete form: %v", err)
	}

	subs, err := st.Submissions.ByForm(ctx, form.ID)
	if err != nil {
		t.Fatalf("ByForm after delete: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("%d orphaned submissions survived form deletion", len(subs))
	}
}

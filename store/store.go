// Package store is the persistence layer behind the HTTP handlers. The
// interfaces are what handlers program against; the implementations in this
// package run on SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/material-forms/api/model"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

type Forms interface {
	Create(ctx context.Context, ownerID, title string, description *string, themeColor string) (model.Form, error)
	ByID(ctx context.Context, id string) (model.Form, error)
	ByOwner(ctx context.Context, ownerID string) ([]model.Form, error)
	Update(ctx context.Context, form model.Form) error
	SetStatus(ctx context.Context, id string, status model.FormStatus) error
	Delete(ctx context.Context, id string) error
}

type Submissions interface {
	Create(ctx context.Context, formID string, answers model.Answers) (model.Submission, error)
	// ByForm returns submissions ordered by submission time ascending.
	ByForm(ctx context.Context, formID string) ([]model.Submission, error)
}

type Users interface {
	Create(ctx context.Context, name, email string, passwordHash []byte) (model.User, error)
	ByID(ctx context.Context, id string) (model.User, error)
	ByEmail(ctx context.Context, email string) (model.User, error)
}

type Store struct {
	Forms       Forms
	Submissions Submissions
	Users       Users
}

func New(db *sql.DB) Store {
	return Store{
		Forms:       &forms{db},
		Submissions: &submissions{db},
		Users:       &users{db},
	}
}

package store

import (
	"context"
	"database/sql"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/material-forms/api/model"
)

type users struct {
	db *sql.DB
}

func (us *users) Create(ctx context.Context, name, email string, passwordHash []byte) (model.User, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.User{}, errors.Wrap(err, "user id")
	}

	user := model.User{
		ID:           id.String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	_, err = us.db.ExecContext(ctx, `
		INSERT INTO user (id, name, email, password_hash)
		VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
	)
	if err != nil {
		return model.User{}, errors.Wrap(err, "insert user")
	}

	return user, nil
}

func (us *users) ByID(ctx context.Context, id string) (model.User, error) {
	return us.scanOne(us.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash
		FROM user
		WHERE id = ?`,
		id,
	))
}

func (us *users) ByEmail(ctx context.Context, email string) (model.User, error) {
	return us.scanOne(us.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash
		FROM user
		WHERE email = ?`,
		email,
	))
}

func (us *users) scanOne(row *sql.Row) (model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, errors.Wrap(err, "select user")
	}
	return user, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/material-forms/api/model"
)

type forms struct {
	db *sql.DB
}

const formColumns = `
	f.id, f.owner_id, f.title, f.description, f.status, f.theme_color,
	f.questions, f.created_at, f.updated_at,
	(SELECT COUNT(*) FROM submission s WHERE s.form_id = f.id) AS response_count`

func (fs *forms) Create(ctx context.Context, ownerID, title string, description *string, themeColor string) (model.Form, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.Form{}, errors.Wrap(err, "form id")
	}

	now := time.Now().UTC()
	form := model.Form{
		ID:          id.String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      model.StatusDraft,
		ThemeColor:  themeColor,
		Questions:   []model.Question{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = fs.db.ExecContext(ctx, `
		INSERT INTO form (id, owner_id, title, description, status, theme_color, questions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '[]', ?, ?)`,
		form.ID,
		form.OwnerID,
		form.Title,
		form.Description,
		form.Status,
		form.ThemeColor,
		form.CreatedAt,
		form.UpdatedAt,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "insert form")
	}

	return form, nil
}

func (fs *forms) ByID(ctx context.Context, id string) (model.Form, error) {
	row := fs.db.QueryRowContext(ctx, `
		SELECT`+formColumns+`
		FROM form f
		WHERE f.id = ?`,
		id,
	)

	form, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Form{}, ErrNotFound
	}
	if err != nil {
		return model.Form{}, errors.Wrap(err, "select form")
	}
	return form, nil
}

func (fs *forms) ByOwner(ctx context.Context, ownerID string) ([]model.Form, error) {
	rows, err := fs.db.QueryContext(ctx, `
		SELECT`+formColumns+`
		FROM form f
		WHERE f.owner_id = ?
		ORDER BY f.updated_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select forms")
	}
	defer rows.Close()

	result := []model.Form{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan form")
		}
		result = append(result, form)
	}
	return result, rows.Err()
}

func (fs *forms) Update(ctx context.Context, form model.Form) error {
	questions, err := json.Marshal(form.Questions)
	if err != nil {
		return errors.Wrap(err, "marshal questions")
	}

	res, err := fs.db.ExecContext(ctx, `
		UPDATE form
		SET
			title = ?,
			description = ?,
			theme_color = ?,
			questions = ?,
			updated_at = ?
		WHERE id = ?`,
		form.Title,
		form.Description,
		form.ThemeColor,
		string(questions),
		time.Now().UTC(),
		form.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update form")
	}
	return checkFound(res)
}

func (fs *forms) SetStatus(ctx context.Context, id string, status model.FormStatus) error {
	res, err := fs.db.ExecContext(ctx, `
		UPDATE form
		SET status = ?, updated_at = ?
		WHERE id = ?`,
		status,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return errors.Wrap(err, "update form status")
	}
	return checkFound(res)
}

func (fs *forms) Delete(ctx context.Context, id string) error {
	// submissions go with it, see the cascade on submission.form_id
	res, err := fs.db.ExecContext(ctx, `DELETE FROM form WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	return checkFound(res)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanForm(row scannable) (form model.Form, err error) {
	var questions string
	err = row.Scan(
		&form.ID, &form.OwnerID, &form.Title, &form.Description, &form.Status, &form.ThemeColor,
		&questions, &form.CreatedAt, &form.UpdatedAt,
		&form.ResponseCount,
	)
	if err != nil {
		return
	}

	err = json.Unmarshal([]byte(questions), &form.Questions)
	if err != nil {
		err = errors.Wrap(err, "parse questions")
	}
	return
}

func checkFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

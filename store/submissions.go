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

type submissions struct {
	db *sql.DB
}

func (ss *submissions) Create(ctx context.Context, formID string, answers model.Answers) (model.Submission, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "submission id")
	}

	payload, err := json.Marshal(answers)
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "marshal answers")
	}

	sub := model.Submission{
		ID:          id.String(),
		FormID:      formID,
		Answers:     answers,
		SubmittedAt: time.Now().UTC(),
	}

	_, err = ss.db.ExecContext(ctx, `
		INSERT INTO submission (id, form_id, answers, submitted_at)
		VALUES (?, ?, ?, ?)`,
		sub.ID,
		sub.FormID,
		string(payload),
		sub.SubmittedAt,
	)
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "insert submission")
	}

	return sub, nil
}

func (ss *submissions) ByForm(ctx context.Context, formID string) ([]model.Submission, error) {
	rows, err := ss.db.QueryContext(ctx, `
		SELECT id, form_id, answers, submitted_at
		FROM submission
		WHERE form_id = ?
		ORDER BY submitted_at ASC, id ASC`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select submissions")
	}
	defer rows.Close()

	result := []model.Submission{}
	for rows.Next() {
		var sub model.Submission
		var answers string
		err = rows.Scan(&sub.ID, &sub.FormID, &answers, &sub.SubmittedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan submission")
		}

		err = json.Unmarshal([]byte(answers), &sub.Answers)
		if err != nil {
			return nil, errors.Wrap(err, "parse answers")
		}

		result = append(result, sub)
	}
	return result, rows.Err()
}

package model

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	Checkbox       QuestionType = "checkbox"
	ShortText      QuestionType = "short_text"
	LongText       QuestionType = "long_text"
	Scale          QuestionType = "scale"
	Dropdown       QuestionType = "dropdown"
	Date           QuestionType = "date"
	Rating         QuestionType = "rating"
)

// HasOptions reports whether the type carries a configured option list.
func (t QuestionType) HasOptions() bool {
	return t == MultipleChoice || t == Checkbox || t == Dropdown
}

// Numeric reports whether answers are integer values (scale points or stars).
func (t QuestionType) Numeric() bool {
	return t == Scale || t == Rating
}

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, Checkbox, ShortText, LongText, Scale, Dropdown, Date, Rating:
		return true
	}
	return false
}

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Title         string       `json:"title"`
	Required      bool         `json:"required"`
	Options       []Option     `json:"options,omitempty"`
	ScaleMin      *int         `json:"scaleMin,omitempty"`
	ScaleMax      *int         `json:"scaleMax,omitempty"`
	ScaleMinLabel string       `json:"scaleMinLabel,omitempty"`
	ScaleMaxLabel string       `json:"scaleMaxLabel,omitempty"`
	RatingMax     *int         `json:"ratingMax,omitempty"`
	Placeholder   string       `json:"placeholder,omitempty"`
}

// OptionLabel resolves an option id to its label.
func (q Question) OptionLabel(id string) (string, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt.Label, true
		}
	}
	return "", false
}

// ValidateQuestions checks a question list as submitted on form update.
// All problems are reported at once.
func ValidateQuestions(questions []Question) error {
	var errs *multierror.Error

	seen := map[string]bool{}
	for i, q := range questions {
		if q.ID == "" {
			errs = multierror.Append(errs, fmt.Errorf("question %d: missing id", i))
			continue
		}
		if seen[q.ID] {
			errs = multierror.Append(errs, fmt.Errorf("question %q: duplicate id", q.ID))
		}
		seen[q.ID] = true

		if !q.Type.Valid() {
			errs = multierror.Append(errs, fmt.Errorf("question %q: unknown type %q", q.ID, q.Type))
			continue
		}
		if q.Title == "" {
			errs = multierror.Append(errs, fmt.Errorf("question %q: missing title", q.ID))
		}

		if q.Type.HasOptions() {
			if len(q.Options) == 0 {
				errs = multierror.Append(errs, fmt.Errorf("question %q: %s requires options", q.ID, q.Type))
			}
			seenOpts := map[string]bool{}
			for _, opt := range q.Options {
				if opt.ID == "" {
					errs = multierror.Append(errs, fmt.Errorf("question %q: option with missing id", q.ID))
					continue
				}
				if seenOpts[opt.ID] {
					errs = multierror.Append(errs, fmt.Errorf("question %q: duplicate option id %q", q.ID, opt.ID))
				}
				seenOpts[opt.ID] = true
			}
		}

		if q.Type == Scale && q.ScaleMin != nil && q.ScaleMax != nil && *q.ScaleMin >= *q.ScaleMax {
			errs = multierror.Append(errs, fmt.Errorf("question %q: scaleMin must be below scaleMax", q.ID))
		}
		if q.Type == Rating && q.RatingMax != nil && *q.RatingMax < 1 {
			errs = multierror.Append(errs, fmt.Errorf("question %q: ratingMax must be positive", q.ID))
		}
	}

	return errs.ErrorOrNil()
}

type FormStatus string

const (
	StatusDraft     FormStatus = "draft"
	StatusPublished FormStatus = "published"
	StatusClosed    FormStatus = "closed"
)

// CanTransition reports whether a status change is allowed.
// Forms move draft to published to closed; closed is terminal.
func (s FormStatus) CanTransition(to FormStatus) bool {
	switch {
	case s == StatusDraft && to == StatusPublished:
		return true
	case s == StatusPublished && to == StatusClosed:
		return true
	}
	return false
}

const (
	DefaultFormTitle  = "Untitled Form"
	DefaultThemeColor = "#6750A4"
)

type Form struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"-"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	Status        FormStatus `json:"status"`
	ThemeColor    string     `json:"themeColor"`
	Questions     []Question `json:"questions"`
	ResponseCount int        `json:"responseCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Submission struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	Answers     Answers   `json:"answers"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
}

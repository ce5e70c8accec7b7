package model

// MissingField identifies a required question left unanswered.
type MissingField struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ValidateAnswers checks an answer set against a form's questions. It returns
// one entry per unanswered required question, in question order, or nil when
// the submission is acceptable. Questions not marked required are never
// checked.
func ValidateAnswers(questions []Question, answers Answers) []MissingField {
	var missing []MissingField
	for _, q := range questions {
		if !q.Required {
			continue
		}
		v, ok := answers[q.ID]
		if !ok || !v.Answered() {
			missing = append(missing, MissingField{ID: q.ID, Title: q.Title})
		}
	}
	return missing
}

// AnsweredAll reports whether every required question has an answer under the
// strict presence rule. Used for the completion rate.
func AnsweredAll(questions []Question, answers Answers) bool {
	return ValidateAnswers(questions, answers) == nil
}

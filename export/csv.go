// Package export renders a form's submissions as CSV for download.
package export

import (
	"regexp"
	"strings"

	"github.com/material-forms/api/model"
)

// Submission timestamps are rendered for humans, not machines.
const timestampLayout = "Jan 2, 2006, 03:04:05 PM"

// CSV renders one header row plus one row per submission, in input order.
// Option ids are resolved to their labels, falling back to the raw stored
// value when no option matches; checkbox selections are joined with "; ".
func CSV(form model.Form, submissions []model.Submission) string {
	rows := make([]string, 0, len(submissions)+1)

	header := make([]string, 0, len(form.Questions)+2)
	header = append(header, "Submission ID", "Submitted At")
	for _, q := range form.Questions {
		header = append(header, q.Title)
	}
	rows = append(rows, encodeRow(header))

	for _, sub := range submissions {
		row := make([]string, 0, len(form.Questions)+2)
		row = append(row, sub.ID, sub.SubmittedAt.UTC().Format(timestampLayout))
		for _, q := range form.Questions {
			row = append(row, cell(q, sub.Answers))
		}
		rows = append(rows, encodeRow(row))
	}

	return strings.Join(rows, "\n")
}

func cell(q model.Question, answers model.Answers) string {
	v, ok := answers[q.ID]
	if !ok {
		return ""
	}

	if q.Type.HasOptions() {
		if v.IsList {
			labels := make([]string, len(v.Multi))
			for i, id := range v.Multi {
				if label, ok := q.OptionLabel(id); ok {
					labels[i] = label
				} else {
					labels[i] = id
				}
			}
			return strings.Join(labels, "; ")
		}
		if label, ok := q.OptionLabel(v.Single); ok {
			return label
		}
		return v.Single
	}

	if v.IsList {
		return strings.Join(v.Multi, "; ")
	}
	return v.Single
}

func encodeRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = escape(c)
	}
	return strings.Join(escaped, ",")
}

// escape quotes a cell only when it needs it: commas, double quotes or
// newlines. Internal quotes are doubled.
func escape(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

var reFilename = regexp.MustCompile(`[^A-Za-z0-9-_ ]`)

// Filename derives a download file name from a form title. Anything outside
// [A-Za-z0-9-_ ] is stripped; an empty result falls back to "export".
func Filename(title string) string {
	name := reFilename.ReplaceAllLiteralString(title, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "export"
	}
	return name
}

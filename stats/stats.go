// Package stats turns a form's submissions into the aggregate report served
// to form owners: response totals, completion rate, per-question answer
// distributions and a per-day response series.
package stats

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/material-forms/api/model"
)

type QuestionStat struct {
	QuestionID    string             `json:"questionId"`
	QuestionTitle string             `json:"questionTitle"`
	QuestionType  model.QuestionType `json:"questionType"`
	TotalAnswers  int                `json:"totalAnswers"`
	Distribution  map[string]int     `json:"distribution,omitempty"`
	AverageValue  *float64           `json:"averageValue,omitempty"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type FormStats struct {
	FormID             string         `json:"formId"`
	TotalResponses     int            `json:"totalResponses"`
	CompletionRate     float64        `json:"completionRate"`
	AverageTimeSeconds int            `json:"averageTimeSeconds"`
	QuestionStats      []QuestionStat `json:"questionStats"`
	ResponsesOverTime  []DateCount    `json:"responsesOverTime"`
}

// Aggregate computes FormStats from a form and its submissions. It is a pure
// function; callers pass submissions ordered by submission time ascending so
// that the responses-over-time series comes out chronological.
//
// AverageTimeSeconds is always 0: nothing records when a respondent started,
// so there is no duration to average.
func Aggregate(form model.Form, submissions []model.Submission) FormStats {
	totalResponses := len(submissions)

	completeCount := 0
	for _, sub := range submissions {
		if model.AnsweredAll(form.Questions, sub.Answers) {
			completeCount++
		}
	}

	completionRate := 0.0
	if totalResponses > 0 {
		completionRate = round1(100 * float64(completeCount) / float64(totalResponses))
	}

	questionStats := make([]QuestionStat, 0, len(form.Questions))
	for _, q := range form.Questions {
		questionStats = append(questionStats, aggregateQuestion(q, submissions))
	}

	return FormStats{
		FormID:             form.ID,
		TotalResponses:     totalResponses,
		CompletionRate:     completionRate,
		AverageTimeSeconds: 0,
		QuestionStats:      questionStats,
		ResponsesOverTime:  responsesOverTime(submissions),
	}
}

func aggregateQuestion(q model.Question, submissions []model.Submission) QuestionStat {
	// Presence here is laxer than required-field validation: a value made of
	// whitespace still counts as an answer. See model.Value.Present.
	var answered []model.Value
	for _, sub := range submissions {
		if v, ok := sub.Answers[q.ID]; ok && v.Present() {
			answered = append(answered, v)
		}
	}

	stat := QuestionStat{
		QuestionID:    q.ID,
		QuestionTitle: q.Title,
		QuestionType:  q.Type,
		TotalAnswers:  len(answered),
	}

	switch {
	case q.Type.HasOptions():
		stat.Distribution = optionDistribution(q, answered)
	case q.Type.Numeric():
		values := make([]int, 0, len(answered))
		for _, v := range answered {
			if v.IsList {
				continue
			}
			if n, ok := parseIntPrefix(v.Single); ok {
				values = append(values, n)
			}
		}
		if len(values) > 0 {
			sum := 0
			dist := map[string]int{}
			for _, n := range values {
				sum += n
				dist[strconv.Itoa(n)]++
			}
			avg := round1(float64(sum) / float64(len(values)))
			stat.AverageValue = &avg
			stat.Distribution = dist
		}
	}

	return stat
}

// optionDistribution counts answers per option label. Every configured option
// starts at zero; stored ids with no matching option are dropped. Checkbox
// answers increment one label per selected id.
func optionDistribution(q model.Question, answered []model.Value) map[string]int {
	dist := map[string]int{}
	for _, opt := range q.Options {
		dist[opt.Label] = 0
	}

	for _, v := range answered {
		if q.Type == model.Checkbox {
			if !v.IsList {
				continue
			}
			for _, id := range v.Multi {
				if label, ok := q.OptionLabel(id); ok {
					dist[label]++
				}
			}
			continue
		}
		if v.IsList {
			continue
		}
		if label, ok := q.OptionLabel(v.Single); ok {
			dist[label]++
		}
	}

	return dist
}

// responsesOverTime groups submissions by UTC calendar date, one entry per
// distinct date in first-seen order. Dates with no submissions are not
// zero-filled.
func responsesOverTime(submissions []model.Submission) []DateCount {
	series := []DateCount{}
	index := map[string]int{}
	for _, sub := range submissions {
		date := sub.SubmittedAt.UTC().Format(time.DateOnly)
		if i, ok := index[date]; ok {
			series[i].Count++
			continue
		}
		index[date] = len(series)
		series = append(series, DateCount{Date: date, Count: 1})
	}
	return series
}

// parseIntPrefix parses the leading integer of a string, matching how the
// reporting frontend historically read scale and rating answers.
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0, false
	}
	n, err := strconv.Atoi(s[:j])
	if err != nil {
		return 0, false
	}
	return n, true
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

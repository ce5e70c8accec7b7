package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestValidateAnswers(t *testing.T) {
	questions := []Question{
		{ID: "q1", Type: MultipleChoice, Title: "Favorite color?", Required: true, Options: []Option{
			{ID: "o1", Label: "Red"},
			{ID: "o2", Label: "Blue"},
		}},
		{ID: "q2", Type: ShortText, Title: "Your name?", Required: false},
		{ID: "q3", Type: Checkbox, Title: "Toppings?", Required: true, Options: []Option{
			{ID: "t1", Label: "Cheese"},
		}},
	}

	tests := []struct {
		name    string
		answers Answers
		missing []MissingField
	}{
		{
			name: "all required answered",
			answers: Answers{
				"q1": StringValue("o1"),
				"q3": ListValue("t1"),
			},
			missing: nil,
		},
		{
			name:    "everything missing reports all required in question order",
			answers: Answers{},
			missing: []MissingField{
				{ID: "q1", Title: "Favorite color?"},
				{ID: "q3", Title: "Toppings?"},
			},
		},
		{
			name: "whitespace-only string is missing",
			answers: Answers{
				"q1": StringValue("   "),
				"q3": ListValue("t1"),
			},
			missing: []MissingField{{ID: "q1", Title: "Favorite color?"}},
		},
		{
			name: "empty array is missing",
			answers: Answers{
				"q1": StringValue("o2"),
				"q3": ListValue(),
			},
			missing: []MissingField{{ID: "q3", Title: "Toppings?"}},
		},
		{
			name: "non-required questions are never checked",
			answers: Answers{
				"q1": StringValue("o1"),
				"q2": StringValue("  "),
				"q3": ListValue("t1"),
			},
			missing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAnswers(questions, tt.answers)
			if !reflect.DeepEqual(got, tt.missing) {
				t.Errorf("ValidateAnswers() = %v, want %v", got, tt.missing)
			}
		})
	}
}

func TestValueJSON(t *testing.T) {
	var answers Answers
	payload := `{"q1":"o1","q2":["a","b"],"q3":""}`
	if err := json.Unmarshal([]byte(payload), &answers); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v := answers["q1"]; v.IsList || v.Single != "o1" {
		t.Errorf("q1 = %+v, want string o1", v)
	}
	if v := answers["q2"]; !v.IsList || !reflect.DeepEqual(v.Multi, []string{"a", "b"}) {
		t.Errorf("q2 = %+v, want list [a b]", v)
	}

	out, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundtrip Answers
	if err := json.Unmarshal(out, &roundtrip); err != nil {
		t.Fatalf("unmarshal roundtrip: %v", err)
	}
	if !reflect.DeepEqual(roundtrip, answers) {
		t.Errorf("roundtrip = %v, want %v", roundtrip, answers)
	}

	var bad Value
	if err := json.Unmarshal([]byte(`{"nested":true}`), &bad); err == nil {
		t.Error("expected error for object-shaped answer value")
	}
}

func TestPresenceRulesDiffer(t *testing.T) {
	// The strict rule trims, the lax one does not. Reporting depends on this
	// staying asymmetric.
	space := StringValue(" ")
	if space.Answered() {
		t.Error("whitespace-only value must not count as answered")
	}
	if !space.Present() {
		t.Error("whitespace-only value must still count as present")
	}

	empty := ListValue()
	if empty.Answered() {
		t.Error("empty list must not count as answered")
	}
	if !empty.Present() {
		t.Error("empty list still counts as present")
	}
}

func TestValidateQuestions(t *testing.T) {
	scaleMin, scaleMax := 5, 1

	tests := []struct {
		name      string
		questions []Question
		wantErr   bool
	}{
		{
			name: "valid set",
			questions: []Question{
				{ID: "q1", Type: Dropdown, Title: "Pick", Options: []Option{{ID: "o1", Label: "A"}}},
				{ID: "q2", Type: LongText, Title: "Tell us"},
			},
			wantErr: false,
		},
		{
			name: "duplicate question id",
			questions: []Question{
				{ID: "q1", Type: ShortText, Title: "A"},
				{ID: "q1", Type: ShortText, Title: "B"},
			},
			wantErr: true,
		},
		{
			name:      "choice type without options",
			questions: []Question{{ID: "q1", Type: MultipleChoice, Title: "Pick"}},
			wantErr:   true,
		},
		{
			name: "duplicate option id",
			questions: []Question{
				{ID: "q1", Type: Checkbox, Title: "Pick", Options: []Option{
					{ID: "o1", Label: "A"},
					{ID: "o1", Label: "B"},
				}},
			},
			wantErr: true,
		},
		{
			name:      "unknown type",
			questions: []Question{{ID: "q1", Type: "matrix", Title: "Huh"}},
			wantErr:   true,
		},
		{
			name:      "inverted scale bounds",
			questions: []Question{{ID: "q1", Type: Scale, Title: "Rate", ScaleMin: &scaleMin, ScaleMax: &scaleMax}},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestions(tt.questions)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuestions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to FormStatus
		want     bool
	}{
		{StatusDraft, StatusPublished, true},
		{StatusPublished, StatusClosed, true},
		{StatusDraft, StatusClosed, false},
		{StatusClosed, StatusPublished, false},
		{StatusClosed, StatusDraft, false},
		{StatusPublished, StatusDraft, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

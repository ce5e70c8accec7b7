package model

import (
	"encoding/json"
	"errors"
	"strings"
)

// Answers maps question ids to submitted values.
type Answers map[string]Value

// Value is one submitted answer: a plain string for single-value question
// types, or a list of option ids for checkbox questions.
type Value struct {
	Single string
	Multi  []string
	IsList bool
}

func StringValue(s string) Value {
	return Value{Single: s}
}

func ListValue(ids ...string) Value {
	if ids == nil {
		ids = []string{}
	}
	return Value{Multi: ids, IsList: true}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value{Single: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = Value{Multi: list, IsList: true}
		return nil
	}
	return errors.New("answer value must be a string or an array of strings")
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.Multi == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Multi)
	}
	return json.Marshal(v.Single)
}

// Answered applies the strict presence rule used for required-field
// validation and the completion rate: lists must be non-empty, strings must
// be non-blank after trimming.
func (v Value) Answered() bool {
	if v.IsList {
		return len(v.Multi) > 0
	}
	return strings.TrimSpace(v.Single) != ""
}

// Present applies the laxer rule used for per-question answer counts: only
// the empty string is treated as absent, whitespace is not trimmed and an
// empty list still counts. The asymmetry with Answered is inherited behavior
// that reporting clients rely on; do not unify the two.
func (v Value) Present() bool {
	if v.IsList {
		return true
	}
	return v.Single != ""
}

package services

import (
	"encoding/json"

	"edutest/models"
)

// Answer payloads are JSON whose shape is keyed by the question type. Each
// variant gets its own struct so the grader dispatches on a decoded value
// instead of probing an untyped map. Decoding is strict about field types but
// never fatal: a payload that does not decode for its type simply scores as
// incorrect.

// MultipleChoiceAnswer is the selected option index.
type MultipleChoiceAnswer struct {
	Index *int `json:"index"`
}

// MultipleChoiceKey accepts either a single correct index or a set of
// acceptable indexes.
type MultipleChoiceKey struct {
	Index   *int  `json:"index"`
	Indexes []int `json:"indexes"`
}

// TrueFalseAnswer and TrueFalseKey share one shape.
type TrueFalseAnswer struct {
	Value *bool `json:"value"`
}

// TextAnswer covers short_answer and form_filling submissions.
type TextAnswer struct {
	Text string `json:"text"`
}

// TextKey accepts either an explicit answer list or a keyword list; a
// case-insensitive match against any entry earns full marks.
type TextKey struct {
	Answers  []string `json:"answers"`
	Keywords []string `json:"keywords"`
}

// MatchingAnswer maps a left-item index (JSON object keys are strings) to the
// chosen right-side value.
type MatchingAnswer struct {
	Matches map[string]string `json:"matches"`
}

// MatchingKey is the authored pairing list, in left-item order.
type MatchingKey struct {
	Pairs []MatchingPair `json:"pairs"`
}

type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

func (k *MultipleChoiceKey) acceptedIndexes() []int {
	if len(k.Indexes) > 0 {
		return k.Indexes
	}
	if k.Index != nil {
		return []int{*k.Index}
	}
	return nil
}

func (k *TextKey) acceptedStrings() []string {
	if len(k.Answers) > 0 {
		return k.Answers
	}
	return k.Keywords
}

// decodeStrict unmarshals a payload or key; a type mismatch anywhere in the
// document is an error, which callers treat as a malformed shape.
func decodeStrict(raw []byte, v interface{}) error {
	return json.Unmarshal(raw, v)
}

// AutoGradable reports whether a question type has an objectively comparable
// answer key. Subjective and unknown types fall through to manual grading.
func AutoGradable(questionType string) bool {
	switch questionType {
	case models.TestTypeMultipleChoice, models.TestTypeTrueFalse,
		models.TestTypeShortAnswer, models.TestTypeFormFilling, models.TestTypeMatching:
		return true
	}
	return false
}

package services

import (
	"strconv"
	"strings"

	"edutest/models"
)

// AutoGradeResult is the grader's verdict for one answer. IsCorrect and
// MarksAwarded stay nil for question types the grader cannot resolve; those
// answers wait for manual grading.
type AutoGradeResult struct {
	IsCorrect    *bool
	MarksAwarded *int
}

// AutoGrade scores a student payload against a question's answer key. It is a
// pure structural comparison and never returns an error: a payload that does
// not match the expected shape for its type scores as incorrect, so one bad
// client payload cannot block a whole submission. An absent payload on an
// auto-gradable question scores zero.
func AutoGrade(q *models.Question, studentAnswer []byte) AutoGradeResult {
	if !AutoGradable(q.QuestionType) {
		return AutoGradeResult{}
	}

	correct := false
	if len(studentAnswer) > 0 && string(studentAnswer) != "null" {
		switch q.QuestionType {
		case models.TestTypeMultipleChoice:
			correct = gradeMultipleChoice(q.CorrectAnswer, studentAnswer)
		case models.TestTypeTrueFalse:
			correct = gradeTrueFalse(q.CorrectAnswer, studentAnswer)
		case models.TestTypeShortAnswer, models.TestTypeFormFilling:
			correct = gradeText(q.CorrectAnswer, studentAnswer)
		case models.TestTypeMatching:
			correct = gradeMatching(q.CorrectAnswer, studentAnswer)
		}
	}

	marks := 0
	if correct {
		marks = q.Marks
	}
	return AutoGradeResult{IsCorrect: &correct, MarksAwarded: &marks}
}

// Full marks or zero: correct iff the selected index is in the accepted set.
func gradeMultipleChoice(key, payload []byte) bool {
	var k MultipleChoiceKey
	if err := decodeStrict(key, &k); err != nil {
		return false
	}
	accepted := k.acceptedIndexes()
	if len(accepted) == 0 {
		return false
	}

	var a MultipleChoiceAnswer
	if err := decodeStrict(payload, &a); err != nil || a.Index == nil {
		return false
	}
	for _, idx := range accepted {
		if *a.Index == idx {
			return true
		}
	}
	return false
}

func gradeTrueFalse(key, payload []byte) bool {
	var k TrueFalseAnswer
	if err := decodeStrict(key, &k); err != nil || k.Value == nil {
		return false
	}
	var a TrueFalseAnswer
	if err := decodeStrict(payload, &a); err != nil || a.Value == nil {
		return false
	}
	return *a.Value == *k.Value
}

// Case-insensitive match against any accepted string.
func gradeText(key, payload []byte) bool {
	var k TextKey
	if err := decodeStrict(key, &k); err != nil {
		return false
	}
	accepted := k.acceptedStrings()
	if len(accepted) == 0 {
		return false
	}

	var a TextAnswer
	if err := decodeStrict(payload, &a); err != nil {
		return false
	}
	got := strings.ToLower(strings.TrimSpace(a.Text))
	if got == "" {
		return false
	}
	for _, want := range accepted {
		if got == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Matching is all-or-nothing at the question level: every authored pair must
// be matched to its right-side value. Unmatched or mismatched pairs fail the
// whole question; stray keys in the payload are ignored.
func gradeMatching(key, payload []byte) bool {
	var k MatchingKey
	if err := decodeStrict(key, &k); err != nil || len(k.Pairs) == 0 {
		return false
	}
	var a MatchingAnswer
	if err := decodeStrict(payload, &a); err != nil || a.Matches == nil {
		return false
	}
	for i, pair := range k.Pairs {
		got, ok := a.Matches[strconv.Itoa(i)]
		if !ok {
			return false
		}
		if !strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(pair.Right)) {
			return false
		}
	}
	return true
}

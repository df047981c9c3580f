package services

import (
	"testing"

	"edutest/models"

	"gorm.io/datatypes"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func question(qType, key string, marks int) *models.Question {
	q := &models.Question{QuestionType: qType, Marks: marks}
	if key != "" {
		q.CorrectAnswer = datatypes.JSON(key)
	}
	return q
}

func assertAutoGrade(t *testing.T, got AutoGradeResult, isCorrect *bool, marks *int) {
	t.Helper()
	if isCorrect == nil {
		if got.IsCorrect != nil {
			t.Fatalf("expected is_correct=nil, got=%v", *got.IsCorrect)
		}
	} else if got.IsCorrect == nil {
		t.Fatalf("expected is_correct=%v, got=nil", *isCorrect)
	} else if *got.IsCorrect != *isCorrect {
		t.Fatalf("expected is_correct=%v, got=%v", *isCorrect, *got.IsCorrect)
	}
	if marks == nil {
		if got.MarksAwarded != nil {
			t.Fatalf("expected marks=nil, got=%v", *got.MarksAwarded)
		}
	} else if got.MarksAwarded == nil {
		t.Fatalf("expected marks=%v, got=nil", *marks)
	} else if *got.MarksAwarded != *marks {
		t.Fatalf("expected marks=%v, got=%v", *marks, *got.MarksAwarded)
	}
}

func TestAutoGrade_MultipleChoice(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		payload   string
		marks     int
		isCorrect *bool
		awarded   *int
	}{
		{name: "correct single index", key: `{"index":2}`, payload: `{"index":2}`, marks: 2, isCorrect: boolPtr(true), awarded: intPtr(2)},
		{name: "wrong single index", key: `{"index":2}`, payload: `{"index":1}`, marks: 2, isCorrect: boolPtr(false), awarded: intPtr(0)},
		{name: "correct from index set", key: `{"indexes":[0,3]}`, payload: `{"index":3}`, marks: 5, isCorrect: boolPtr(true), awarded: intPtr(5)},
		{name: "wrong against index set", key: `{"indexes":[0,3]}`, payload: `{"index":1}`, marks: 5, isCorrect: boolPtr(false), awarded: intPtr(0)},
		{name: "unanswered scores zero", key: `{"index":0}`, payload: "", marks: 3, isCorrect: boolPtr(false), awarded: intPtr(0)},
		{name: "malformed payload scores zero", key: `{"index":0}`, payload: `{"index":"two"}`, marks: 3, isCorrect: boolPtr(false), awarded: intPtr(0)},
		{name: "truncated payload scores zero", key: `{"index":0}`, payload: `{"index":`, marks: 3, isCorrect: boolPtr(false), awarded: intPtr(0)},
		{name: "missing key scores zero", key: `{}`, payload: `{"index":0}`, marks: 3, isCorrect: boolPtr(false), awarded: intPtr(0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := question(models.TestTypeMultipleChoice, tc.key, tc.marks)
			got := AutoGrade(q, []byte(tc.payload))
			assertAutoGrade(t, got, tc.isCorrect, tc.awarded)
		})
	}
}

func TestAutoGrade_TrueFalse(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		payload   string
		isCorrect bool
	}{
		{name: "true matches true", key: `{"value":true}`, payload: `{"value":true}`, isCorrect: true},
		{name: "false matches false", key: `{"value":false}`, payload: `{"value":false}`, isCorrect: true},
		{name: "mismatch", key: `{"value":true}`, payload: `{"value":false}`, isCorrect: false},
		{name: "non-boolean payload", key: `{"value":true}`, payload: `{"value":"true"}`, isCorrect: false},
		{name: "missing value", key: `{"value":true}`, payload: `{}`, isCorrect: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := question(models.TestTypeTrueFalse, tc.key, 1)
			got := AutoGrade(q, []byte(tc.payload))
			want := 0
			if tc.isCorrect {
				want = 1
			}
			assertAutoGrade(t, got, boolPtr(tc.isCorrect), intPtr(want))
		})
	}
}

func TestAutoGrade_Text(t *testing.T) {
	tests := []struct {
		name      string
		qType     string
		key       string
		payload   string
		isCorrect bool
	}{
		{name: "exact answer match", qType: models.TestTypeShortAnswer, key: `{"answers":["Paris"]}`, payload: `{"text":"Paris"}`, isCorrect: true},
		{name: "case-insensitive match", qType: models.TestTypeShortAnswer, key: `{"answers":["Paris"]}`, payload: `{"text":"pARIs"}`, isCorrect: true},
		{name: "whitespace trimmed", qType: models.TestTypeShortAnswer, key: `{"answers":["Paris"]}`, payload: `{"text":"  paris "}`, isCorrect: true},
		{name: "any accepted string wins", qType: models.TestTypeShortAnswer, key: `{"answers":["colour","color"]}`, payload: `{"text":"color"}`, isCorrect: true},
		{name: "keywords key accepted", qType: models.TestTypeFormFilling, key: `{"keywords":["photosynthesis"]}`, payload: `{"text":"Photosynthesis"}`, isCorrect: true},
		{name: "no match", qType: models.TestTypeShortAnswer, key: `{"answers":["Paris"]}`, payload: `{"text":"London"}`, isCorrect: false},
		{name: "empty text", qType: models.TestTypeShortAnswer, key: `{"answers":["Paris"]}`, payload: `{"text":""}`, isCorrect: false},
		{name: "payload not an object", qType: models.TestTypeFormFilling, key: `{"answers":["Paris"]}`, payload: `"Paris"`, isCorrect: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := question(tc.qType, tc.key, 2)
			got := AutoGrade(q, []byte(tc.payload))
			want := 0
			if tc.isCorrect {
				want = 2
			}
			assertAutoGrade(t, got, boolPtr(tc.isCorrect), intPtr(want))
		})
	}
}

func TestAutoGrade_Matching(t *testing.T) {
	key := `{"pairs":[{"left":"cat","right":"meow"},{"left":"dog","right":"woof"}]}`
	tests := []struct {
		name      string
		payload   string
		isCorrect bool
	}{
		{name: "all pairs matched", payload: `{"matches":{"0":"meow","1":"woof"}}`, isCorrect: true},
		{name: "case-insensitive pair values", payload: `{"matches":{"0":"MEOW","1":"Woof"}}`, isCorrect: true},
		{name: "one wrong pair fails the question", payload: `{"matches":{"0":"meow","1":"meow"}}`, isCorrect: false},
		{name: "one missing pair fails the question", payload: `{"matches":{"0":"meow"}}`, isCorrect: false},
		{name: "stray keys ignored", payload: `{"matches":{"0":"meow","1":"woof","9":"moo"}}`, isCorrect: true},
		{name: "empty matches", payload: `{"matches":{}}`, isCorrect: false},
		{name: "malformed matches", payload: `{"matches":[["cat","meow"]]}`, isCorrect: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := question(models.TestTypeMatching, key, 4)
			got := AutoGrade(q, []byte(tc.payload))
			want := 0
			if tc.isCorrect {
				want = 4
			}
			assertAutoGrade(t, got, boolPtr(tc.isCorrect), intPtr(want))
		})
	}
}

func TestAutoGrade_SubjectiveTypesStayUngraded(t *testing.T) {
	for _, qType := range []string{models.TestTypeEssay, models.TestTypeWriting, models.TestTypeReadingPassage} {
		t.Run(qType, func(t *testing.T) {
			q := question(qType, "", 5)
			got := AutoGrade(q, []byte(`{"text":"a long considered response"}`))
			assertAutoGrade(t, got, nil, nil)
		})
	}
}

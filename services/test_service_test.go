package services

import (
	"encoding/json"
	"errors"
	"testing"

	"edutest/models"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateQuestionRequest
		wantErr bool
	}{
		{
			name: "valid multiple choice",
			req: CreateQuestionRequest{
				Text: "2+2?", QuestionType: models.TestTypeMultipleChoice, Marks: 2,
				Options:       []string{"3", "4", "5"},
				CorrectAnswer: json.RawMessage(`{"index":1}`),
			},
		},
		{
			name: "multiple choice with index set",
			req: CreateQuestionRequest{
				Text: "even numbers?", QuestionType: models.TestTypeMultipleChoice, Marks: 2,
				Options:       []string{"1", "2", "3", "4"},
				CorrectAnswer: json.RawMessage(`{"indexes":[1,3]}`),
			},
		},
		{
			name: "multiple choice index out of range",
			req: CreateQuestionRequest{
				Text: "2+2?", QuestionType: models.TestTypeMultipleChoice, Marks: 2,
				Options:       []string{"3", "4"},
				CorrectAnswer: json.RawMessage(`{"index":5}`),
			},
			wantErr: true,
		},
		{
			name: "multiple choice too few options",
			req: CreateQuestionRequest{
				Text: "2+2?", QuestionType: models.TestTypeMultipleChoice, Marks: 2,
				Options:       []string{"4"},
				CorrectAnswer: json.RawMessage(`{"index":0}`),
			},
			wantErr: true,
		},
		{
			name: "multiple choice missing key",
			req: CreateQuestionRequest{
				Text: "2+2?", QuestionType: models.TestTypeMultipleChoice, Marks: 2,
				Options:       []string{"3", "4"},
				CorrectAnswer: json.RawMessage(`{}`),
			},
			wantErr: true,
		},
		{
			name: "valid true false",
			req: CreateQuestionRequest{
				Text: "the sky is blue", QuestionType: models.TestTypeTrueFalse, Marks: 1,
				CorrectAnswer: json.RawMessage(`{"value":true}`),
			},
		},
		{
			name: "true false with non-boolean key",
			req: CreateQuestionRequest{
				Text: "the sky is blue", QuestionType: models.TestTypeTrueFalse, Marks: 1,
				CorrectAnswer: json.RawMessage(`{"value":"yes"}`),
			},
			wantErr: true,
		},
		{
			name: "valid short answer",
			req: CreateQuestionRequest{
				Text: "capital of France", QuestionType: models.TestTypeShortAnswer, Marks: 2,
				CorrectAnswer: json.RawMessage(`{"answers":["Paris"]}`),
			},
		},
		{
			name: "short answer with empty key",
			req: CreateQuestionRequest{
				Text: "capital of France", QuestionType: models.TestTypeShortAnswer, Marks: 2,
				CorrectAnswer: json.RawMessage(`{"answers":[]}`),
			},
			wantErr: true,
		},
		{
			name: "valid matching",
			req: CreateQuestionRequest{
				Text: "match the sounds", QuestionType: models.TestTypeMatching, Marks: 4,
				CorrectAnswer: json.RawMessage(`{"pairs":[{"left":"cat","right":"meow"}]}`),
			},
		},
		{
			name: "matching pair missing a side",
			req: CreateQuestionRequest{
				Text: "match the sounds", QuestionType: models.TestTypeMatching, Marks: 4,
				CorrectAnswer: json.RawMessage(`{"pairs":[{"left":"cat"}]}`),
			},
			wantErr: true,
		},
		{
			name: "essay needs no key",
			req: CreateQuestionRequest{
				Text: "discuss", QuestionType: models.TestTypeEssay, Marks: 5,
			},
		},
		{
			name: "unknown type rejected",
			req: CreateQuestionRequest{
				Text: "??", QuestionType: "oral_exam", Marks: 1,
			},
			wantErr: true,
		},
		{
			name: "zero marks rejected",
			req: CreateQuestionRequest{
				Text: "discuss", QuestionType: models.TestTypeEssay, Marks: 0,
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateQuestion(&tc.req)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestTotalAndPassingMarks(t *testing.T) {
	questions := []CreateQuestionRequest{
		{Marks: 2}, {Marks: 3}, {Marks: 5},
	}
	if got := totalQuestionMarks(questions); got != 10 {
		t.Fatalf("expected total 10, got %d", got)
	}

	tests := []struct {
		total int
		want  int
	}{
		{total: 10, want: 6},
		{total: 5, want: 3},  // ceil(3.0)
		{total: 7, want: 5},  // ceil(4.2)
		{total: 1, want: 1},  // ceil(0.6)
		{total: 0, want: 0},
	}
	for _, tc := range tests {
		if got := defaultPassingMarks(tc.total); got != tc.want {
			t.Errorf("defaultPassingMarks(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

package services

import (
	"testing"

	"edutest/models"
)

func TestClampMarks(t *testing.T) {
	tests := []struct {
		name  string
		marks int
		max   int
		want  int
	}{
		{name: "within range", marks: 3, max: 5, want: 3},
		{name: "negative clamps to zero", marks: -2, max: 5, want: 0},
		{name: "above max clamps to max", marks: 9, max: 5, want: 5},
		{name: "exact max", marks: 5, max: 5, want: 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampMarks(tc.marks, tc.max); got != tc.want {
				t.Fatalf("clampMarks(%d, %d) = %d, want %d", tc.marks, tc.max, got, tc.want)
			}
		})
	}
}

func TestRecomputeScore(t *testing.T) {
	tests := []struct {
		name       string
		answers    []models.Answer
		totalMarks int
		want       int
	}{
		{
			name: "sums awarded marks",
			answers: []models.Answer{
				{MarksAwarded: intPtr(2)},
				{MarksAwarded: intPtr(3)},
			},
			totalMarks: 10,
			want:       5,
		},
		{
			name: "ungraded answers contribute nothing",
			answers: []models.Answer{
				{MarksAwarded: intPtr(4)},
				{MarksAwarded: nil},
			},
			totalMarks: 10,
			want:       4,
		},
		{
			name: "clamped to the marks snapshot",
			answers: []models.Answer{
				{MarksAwarded: intPtr(8)},
				{MarksAwarded: intPtr(7)},
			},
			totalMarks: 10,
			want:       10,
		},
		{
			name:       "no answers scores zero",
			answers:    nil,
			totalMarks: 10,
			want:       0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := recomputeScore(tc.answers, tc.totalMarks); got != tc.want {
				t.Fatalf("recomputeScore = %d, want %d", got, tc.want)
			}
		})
	}
}

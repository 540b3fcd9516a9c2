package offline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

func TestResponder_Arithmetic(t *testing.T) {
	t.Parallel()

	r := New()

	tests := []struct {
		question string
		want     string
	}{
		{question: "2 + 2", want: "4"},
		{question: "What is 12 * 3?", want: "36"},
		{question: "calculate (1 + 2) * 4", want: "12"},
		{question: "7 / 2", want: "3.5"},
		{question: "2 ^ 10", want: "1024"},
		{question: "what is 3 x 4", want: "12"},
		{question: "6 ÷ 3", want: "2"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, r.Answer(tt.question), "**"+tt.want+"**")
		})
	}
}

func TestResponder_CompleteUsesLastUserMessage(t *testing.T) {
	t.Parallel()

	r := New()
	out, err := r.Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.PromptMessage{
			{Role: domain.RoleSystem, Parts: []domain.ContentPart{{Type: domain.PartText, Text: "persona 1 + 1"}}},
			{Role: domain.RoleUser, Parts: []domain.ContentPart{{Type: domain.PartText, Text: "2 + 2"}}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "4")
	assert.Equal(t, "offline", r.Name())
}

func TestResponder_Deterministic(t *testing.T) {
	t.Parallel()

	r := New()
	assert.Equal(t, r.Answer("Explain photosynthesis"), r.Answer("explain  PHOTOSYNTHESIS"))
	assert.Contains(t, r.Answer("Explain photosynthesis"), "Photosynthesis")
}

func TestResponder_GreetingAndFallback(t *testing.T) {
	t.Parallel()

	r := New()

	assert.Contains(t, r.Answer("Hello!"), "LearnFlow")
	assert.Contains(t, r.Answer("hi, can you help"), "LearnFlow")
	assert.NotContains(t, r.Answer("history of china"), "Hello!")
	assert.Contains(t, r.Answer("history of china"), "offline mode")
}

func TestFindExpression_SkipsNonArithmetic(t *testing.T) {
	t.Parallel()

	for _, q := range []string{
		"Solve 2x + 3 = 7",
		"What happened in 1945?",
		"chapter 3",
		"(",
		"1 +",
		"What happened in the 2020-2021 school year?",
		"My exam is on 12/05/2024, what should I revise?",
		"Call 555-1234",
		"Call 415-555-1234 after school",
		"Born on 2009-04-17",
		"Read pages 1990-95 of the atlas",
	} {
		_, _, ok := findExpression(q)
		assert.False(t, ok, q)
	}
}

func TestFindExpression_KeepsSpacedAndShortOperands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want float64
	}{
		{text: "What is 2020 - 2021?", want: -1},
		{text: "what is 10/4", want: 2.5},
		{text: "compute 12/3/2", want: 2},
		{text: "555 - 1234 = ?", want: -679},
	}
	for _, tt := range tests {
		_, got, ok := findExpression(tt.text)
		require.True(t, ok, tt.text)
		assert.InDelta(t, tt.want, got, 1e-9, tt.text)
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr    string
		want    float64
		wantErr bool
	}{
		{expr: "1+2*3", want: 7},
		{expr: "(1+2)*3", want: 9},
		{expr: "-3+5", want: 2},
		{expr: "2^3^2", want: 512},
		{expr: "10/4", want: 2.5},
		{expr: "1/0", wantErr: true},
		{expr: "(1+2", wantErr: true},
		{expr: "1+2)", wantErr: true},
		{expr: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			got, err := evaluate(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "4", formatNumber(4))
	assert.Equal(t, "-2", formatNumber(-2))
	assert.Equal(t, "3.5", formatNumber(3.5))
}

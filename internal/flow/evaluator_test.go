package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) *Flow {
	t.Helper()
	f, err := ParseFlow([]byte(doc))
	require.NoError(t, err)
	return f
}

func TestEvaluateNoFlow(t *testing.T) {
	next, msg := Evaluate(nil, "start", "hello")
	assert.Empty(t, next)
	assert.Equal(t, MsgNoFlow, msg)

	empty := mustParse(t, `{"steps": []}`)
	next, msg = Evaluate(empty, "start", "hello")
	assert.Empty(t, next)
	assert.Equal(t, MsgNoFlow, msg)
}

func TestEvaluateUnknownStep(t *testing.T) {
	f := mustParse(t, `{"steps": [{"id": "start", "message": "hi"}]}`)

	next, msg := Evaluate(f, "removed-by-edit", "anything")
	assert.Empty(t, next)
	assert.Equal(t, MsgInvalidStep, msg)
}

func TestEvaluateTerminalStep(t *testing.T) {
	f := mustParse(t, `{"steps": [{"id": "end", "message": "bye"}]}`)

	// Terminal steps stay silent: no next step, no message.
	next, msg := Evaluate(f, "end", "hello again")
	assert.Empty(t, next)
	assert.Empty(t, msg)
}

func TestEvaluateUnconditional(t *testing.T) {
	f := mustParse(t, `{"steps": [
		{"id": "a", "message": "first", "next": "b"},
		{"id": "b", "message": "second"}
	]}`)

	// The transition fires regardless of input content.
	for _, input := range []string{"yes", "no", "", "   ", "anything at all"} {
		next, msg := Evaluate(f, "a", input)
		assert.Equal(t, "b", next)
		assert.Equal(t, "second", msg)
	}
}

func TestEvaluateUnconditionalMissingTarget(t *testing.T) {
	f := mustParse(t, `{"steps": [{"id": "a", "message": "first", "next": "ghost"}]}`)

	// Lenient policy: the transition still happens, with an empty message.
	next, msg := Evaluate(f, "a", "x")
	assert.Equal(t, "ghost", next)
	assert.Empty(t, msg)
}

const branchingDoc = `{"steps": [
	{"id": "start", "message": "Reply YES or NO", "next": [
		{"pattern": "^yes$", "next": "confirm"},
		{"pattern": "^no$", "next": "cancel"},
		{"pattern": ".*", "next": "fallback"}
	]},
	{"id": "confirm", "message": "Confirmed"},
	{"id": "cancel", "message": "Cancelled"},
	{"id": "fallback", "message": "Did not understand"}
]}`

func TestEvaluateFirstMatchWins(t *testing.T) {
	f := mustParse(t, branchingDoc)

	tests := []struct {
		input    string
		wantNext string
		wantMsg  string
	}{
		{"yes", "confirm", "Confirmed"},
		// "no" matches both "^no$" and ".*"; the earlier entry wins.
		{"no", "cancel", "Cancelled"},
		{"maybe", "fallback", "Did not understand"},
	}

	for _, tt := range tests {
		next, msg := Evaluate(f, "start", tt.input)
		assert.Equal(t, tt.wantNext, next, "input %q", tt.input)
		assert.Equal(t, tt.wantMsg, msg, "input %q", tt.input)
	}
}

func TestEvaluateNoMatchingPattern(t *testing.T) {
	f := mustParse(t, `{"steps": [
		{"id": "start", "message": "m", "next": [{"pattern": "^yes$", "next": "confirm"}]},
		{"id": "confirm", "message": "Confirmed"}
	]}`)

	next, msg := Evaluate(f, "start", "nope")
	assert.Empty(t, next)
	assert.Equal(t, MsgNoNextStep, msg)
}

func TestEvaluateTrimsInput(t *testing.T) {
	f := mustParse(t, branchingDoc)

	next, _ := Evaluate(f, "start", "  yes \n")
	assert.Equal(t, "confirm", next)
}

func TestEvaluateCaseSensitive(t *testing.T) {
	f := mustParse(t, branchingDoc)

	// No case folding: "YES" falls through to the catch-all.
	next, _ := Evaluate(f, "start", "YES")
	assert.Equal(t, "fallback", next)
}

func TestEvaluateCaseInsensitivePattern(t *testing.T) {
	f := mustParse(t, `{"steps": [
		{"id": "start", "message": "m", "next": [{"pattern": "^(?i)yes$", "next": "confirm"}]},
		{"id": "confirm", "message": "Great, confirmed!"}
	]}`)

	next, msg := Evaluate(f, "start", "YES")
	assert.Equal(t, "confirm", next)
	assert.Equal(t, "Great, confirmed!", msg)
}

func TestEvaluateMatchAnchoredAtStart(t *testing.T) {
	f := mustParse(t, `{"steps": [
		{"id": "start", "message": "m", "next": [{"pattern": "yes", "next": "confirm"}]},
		{"id": "confirm", "message": "Confirmed"}
	]}`)

	// Matching anchors at the start of the input but leaves the tail open.
	next, _ := Evaluate(f, "start", "yes please")
	assert.Equal(t, "confirm", next)

	next, msg := Evaluate(f, "start", "say yes")
	assert.Empty(t, next)
	assert.Equal(t, MsgNoNextStep, msg)
}

func TestEvaluateInvalidRegexFallsBackToEquality(t *testing.T) {
	f := mustParse(t, `{"steps": [
		{"id": "start", "message": "m", "next": [{"pattern": "[unclosed", "next": "confirm"}]},
		{"id": "confirm", "message": "Confirmed"}
	]}`)

	next, _ := Evaluate(f, "start", "[unclosed")
	assert.Equal(t, "confirm", next)

	next, msg := Evaluate(f, "start", "other")
	assert.Empty(t, next)
	assert.Equal(t, MsgNoNextStep, msg)
}

func TestEvaluateIsPure(t *testing.T) {
	f := mustParse(t, branchingDoc)

	for i := 0; i < 10; i++ {
		next, msg := Evaluate(f, "start", "no")
		assert.Equal(t, "cancel", next)
		assert.Equal(t, "Cancelled", msg)
	}
}

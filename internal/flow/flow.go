package flow

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Error kinds reported by flow parsing and validation
const (
	MalformedFlow     = "malformed_flow"
	DanglingReference = "dangling_reference"
)

// FlowError describes why a flow document was rejected
type FlowError struct {
	Kind   string
	Detail string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// NextKind discriminates a step's transition rule
type NextKind int

const (
	NextTerminal NextKind = iota // no "next" field
	NextGoto                     // "next" is a step id
	NextBranch                   // "next" is a pattern list
)

// Branch is one (pattern, target) entry of a conditional transition.
// The regex is compiled once at parse time, anchored at the start of the
// input. A pattern that does not compile keeps a nil program and matches
// by exact string equality instead.
type Branch struct {
	Pattern string
	Target  string
	re      *regexp.Regexp
}

// Matches reports whether the trimmed user input selects this branch.
func (b Branch) Matches(trimmed string) bool {
	if b.re != nil {
		return b.re.MatchString(trimmed)
	}
	return b.Pattern == trimmed
}

// Next is a step's transition rule, decided once at parse time
type Next struct {
	Kind     NextKind
	Target   string
	Branches []Branch
}

// Step is one node of a firm's dialogue graph
type Step struct {
	ID      string
	Message string
	Next    Next
}

// Flow is a firm's parsed dialogue graph
type Flow struct {
	steps []Step
	index map[string]int
}

// rawStep mirrors the stored JSON; "next" is shape-checked below
type rawStep struct {
	ID      string          `json:"id"`
	Message string          `json:"message"`
	Next    json.RawMessage `json:"next"`
}

type rawBranch struct {
	Pattern *string `json:"pattern"`
	Next    *string `json:"next"`
}

type rawFlow struct {
	Steps *[]rawStep `json:"steps"`
}

// ParseFlow unmarshals and structurally validates a flow document.
// It fails with a MalformedFlow error when the top-level shape lacks a
// steps collection, any step lacks an id or message, or any conditional
// transition entry lacks a pattern or target.
func ParseFlow(data []byte) (*Flow, error) {
	var raw rawFlow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FlowError{Kind: MalformedFlow, Detail: err.Error()}
	}
	if raw.Steps == nil {
		return nil, &FlowError{Kind: MalformedFlow, Detail: "missing steps collection"}
	}

	f := &Flow{
		steps: make([]Step, 0, len(*raw.Steps)),
		index: make(map[string]int, len(*raw.Steps)),
	}
	for i, rs := range *raw.Steps {
		if rs.ID == "" {
			return nil, &FlowError{Kind: MalformedFlow, Detail: fmt.Sprintf("step %d: missing id", i)}
		}
		if rs.Message == "" {
			return nil, &FlowError{Kind: MalformedFlow, Detail: fmt.Sprintf("step %q: missing message", rs.ID)}
		}
		next, err := parseNext(rs.ID, rs.Next)
		if err != nil {
			return nil, err
		}
		step := Step{ID: rs.ID, Message: rs.Message, Next: next}
		f.steps = append(f.steps, step)
		if _, dup := f.index[rs.ID]; !dup {
			f.index[rs.ID] = len(f.steps) - 1
		}
	}
	return f, nil
}

func parseNext(stepID string, raw json.RawMessage) (Next, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Next{Kind: NextTerminal}, nil
	}

	var target string
	if err := json.Unmarshal(raw, &target); err == nil {
		return Next{Kind: NextGoto, Target: target}, nil
	}

	var entries []rawBranch
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Next{}, &FlowError{Kind: MalformedFlow, Detail: fmt.Sprintf("step %q: next must be a step id or a pattern list", stepID)}
	}

	branches := make([]Branch, 0, len(entries))
	for i, e := range entries {
		if e.Pattern == nil {
			return Next{}, &FlowError{Kind: MalformedFlow, Detail: fmt.Sprintf("step %q: transition %d missing pattern", stepID, i)}
		}
		if e.Next == nil || *e.Next == "" {
			return Next{}, &FlowError{Kind: MalformedFlow, Detail: fmt.Sprintf("step %q: transition %d missing target", stepID, i)}
		}
		b := Branch{Pattern: *e.Pattern, Target: *e.Next}
		// Anchor at the start of the input only, leaving the tail open
		if re, err := regexp.Compile(`\A(?:` + *e.Pattern + `)`); err == nil {
			b.re = re
		}
		branches = append(branches, b)
	}
	return Next{Kind: NextBranch, Branches: branches}, nil
}

// Step returns the step with the given id, if present.
func (f *Flow) Step(id string) (Step, bool) {
	if f == nil {
		return Step{}, false
	}
	i, ok := f.index[id]
	if !ok {
		return Step{}, false
	}
	return f.steps[i], true
}

// Steps returns the steps in document order.
func (f *Flow) Steps() []Step {
	if f == nil {
		return nil
	}
	return f.steps
}

// Len returns the number of steps in the document.
func (f *Flow) Len() int {
	if f == nil {
		return 0
	}
	return len(f.steps)
}

// ValidateReferences checks that every transition target names an existing
// step. Evaluation does not require this, but the admin surface runs it
// before persisting an edited flow.
func (f *Flow) ValidateReferences() error {
	for _, step := range f.steps {
		switch step.Next.Kind {
		case NextGoto:
			if _, ok := f.index[step.Next.Target]; !ok {
				return &FlowError{Kind: DanglingReference, Detail: fmt.Sprintf("step %q: next references unknown step %q", step.ID, step.Next.Target)}
			}
		case NextBranch:
			for _, b := range step.Next.Branches {
				if _, ok := f.index[b.Target]; !ok {
					return &FlowError{Kind: DanglingReference, Detail: fmt.Sprintf("step %q: pattern %q references unknown step %q", step.ID, b.Pattern, b.Target)}
				}
			}
		}
	}
	return nil
}

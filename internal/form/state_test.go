package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"prediction-form/internal/predict"
)

func filled(value string) Fields {
	var f Fields
	for i := range f {
		f[i] = value
	}
	return f
}

func TestReduce(t *testing.T) {
	prior := &predict.Result{Raw: []byte(`{"prediction":0}`)}
	next := &predict.Result{Raw: []byte(`{"prediction":1}`)}
	sample := filled("1.5")

	withField := func(s State, i int, v string) State {
		s.Fields[i] = v
		return s
	}

	tests := []struct {
		name   string
		state  State
		action Action
		want   State
	}{
		{
			name:   "update field verbatim",
			state:  State{},
			action: UpdateField{Index: 3, Value: " 12abc "},
			want:   withField(State{}, 3, " 12abc "),
		},
		{
			name:   "update last field",
			state:  State{},
			action: UpdateField{Index: FieldCount - 1, Value: "9"},
			want:   withField(State{}, FieldCount-1, "9"),
		},
		{
			name:   "update negative index ignored",
			state:  State{Error: "x"},
			action: UpdateField{Index: -1, Value: "9"},
			want:   State{Error: "x"},
		},
		{
			name:   "update index past end ignored",
			state:  State{},
			action: UpdateField{Index: FieldCount, Value: "9"},
			want:   State{},
		},
		{
			name:   "fill sample replaces every entry",
			state:  State{Fields: filled("junk"), Error: "keep", Result: prior},
			action: FillSample{Values: sample},
			want:   State{Fields: sample, Error: "keep", Result: prior},
		},
		{
			name:   "reset clears fields result and error",
			state:  State{Fields: filled("3"), Result: prior, Error: "API error: 500"},
			action: Reset{},
			want:   State{},
		},
		{
			name:   "reset keeps in-flight flag",
			state:  State{Fields: filled("3"), InFlight: true},
			action: Reset{},
			want:   State{InFlight: true},
		},
		{
			name:   "submit started clears error",
			state:  State{Error: "API error: 500", Result: prior},
			action: SubmitStarted{},
			want:   State{InFlight: true, Result: prior},
		},
		{
			name:   "submit failed keeps prior result",
			state:  State{InFlight: true, Result: prior},
			action: SubmitFailed{Message: "API error: 503"},
			want:   State{Result: prior, Error: "API error: 503"},
		},
		{
			name:   "submit succeeded replaces result",
			state:  State{InFlight: true, Result: prior},
			action: SubmitSucceeded{Result: next},
			want:   State{Result: next},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Reduce(tc.state, tc.action)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	original := State{Fields: filled("1")}
	_ = Reduce(original, UpdateField{Index: 0, Value: "2"})
	if original.Fields[0] != "1" {
		t.Fatalf("input state mutated: %q", original.Fields[0])
	}
}

func TestResetIsIdempotent(t *testing.T) {
	states := []State{
		{},
		{Fields: filled("4.2"), Error: "All fields must contain valid numbers"},
		{Result: &predict.Result{Raw: []byte(`{}`)}},
	}
	for _, s := range states {
		once := Reduce(s, Reset{})
		twice := Reduce(once, Reset{})
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("reset not idempotent (-once +twice):\n%s", diff)
		}
		if once.Fields != (Fields{}) || once.Result != nil || once.Error != "" {
			t.Fatalf("reset left state behind: %+v", once)
		}
	}
}

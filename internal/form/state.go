// Package form holds the prediction form's UI state and the rules that move it
// from one state to the next.
package form

import "prediction-form/internal/predict"

// FieldCount is the length of the feature vector the prediction service expects.
const FieldCount = 30

// Fields is the user's raw text for every feature, in service order.
type Fields [FieldCount]string

// State is a snapshot of the form. Values are copied on assignment, so a
// State handed to a subscriber never changes underneath it.
type State struct {
	Fields   Fields
	Result   *predict.Result
	InFlight bool
	Error    string
}

// Action describes one state transition.
type Action interface {
	isAction()
}

// UpdateField replaces one entry verbatim.
type UpdateField struct {
	Index int
	Value string
}

// FillSample overwrites every entry with the reference sample.
type FillSample struct {
	Values Fields
}

// Reset empties the fields and clears the result and error.
type Reset struct{}

// SubmitStarted marks a submission as outstanding.
type SubmitStarted struct{}

// SubmitFailed ends a submission with a user-visible message.
type SubmitFailed struct {
	Message string
}

// SubmitSucceeded ends a submission with the service's result.
type SubmitSucceeded struct {
	Result *predict.Result
}

func (UpdateField) isAction()     {}
func (FillSample) isAction()      {}
func (Reset) isAction()           {}
func (SubmitStarted) isAction()   {}
func (SubmitFailed) isAction()    {}
func (SubmitSucceeded) isAction() {}

// Reduce returns the state that follows s after action. It has no side
// effects; unknown actions and out-of-range indexes leave s unchanged.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case UpdateField:
		if a.Index < 0 || a.Index >= FieldCount {
			return s
		}
		s.Fields[a.Index] = a.Value
	case FillSample:
		s.Fields = a.Values
	case Reset:
		s.Fields = Fields{}
		s.Result = nil
		s.Error = ""
	case SubmitStarted:
		s.InFlight = true
		s.Error = ""
	case SubmitFailed:
		s.InFlight = false
		s.Error = a.Message
	case SubmitSucceeded:
		s.InFlight = false
		s.Result = a.Result
	}
	return s
}

// Package render projects form state into view models. Nothing here
// touches I/O; the web page and the console both draw from these values.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"prediction-form/internal/form"
	"prediction-form/internal/predict"
)

var percentPrinter = message.NewPrinter(language.English)

// FieldView is one editable input.
type FieldView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ResultView is the presentation of a Prediction Result.
type ResultView struct {
	Raw               string `json:"raw"`
	HasPrediction     bool   `json:"has_prediction"`
	NumericPrediction bool   `json:"numeric_prediction"`
	Prediction        string `json:"prediction,omitempty"`
	Confidence        string `json:"confidence,omitempty"`
	Details           string `json:"details,omitempty"`
}

// PageView is everything needed to draw the form once.
type PageView struct {
	Fields   []FieldView `json:"fields"`
	Result   *ResultView `json:"result"`
	InFlight bool        `json:"in_flight"`
	Error    string      `json:"error,omitempty"`
}

// DefaultLabels names the inputs Feature 1 through Feature 30.
func DefaultLabels() []string {
	labels := make([]string, form.FieldCount)
	for i := range labels {
		labels[i] = fmt.Sprintf("Feature %d", i+1)
	}
	return labels
}

// FieldName is the form key an input posts under.
func FieldName(index int) string {
	return "field_" + strconv.Itoa(index)
}

// Fields pairs each entry with its label. Missing labels fall back to the
// default naming.
func Fields(labels []string, values form.Fields) []FieldView {
	views := make([]FieldView, form.FieldCount)
	for i := range views {
		label := fmt.Sprintf("Feature %d", i+1)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		views[i] = FieldView{Index: i, Name: FieldName(i), Label: label, Value: values[i]}
	}
	return views
}

// Result projects r, returning nil when there is nothing to show.
func Result(r *predict.Result) *ResultView {
	if r == nil {
		return nil
	}
	view := &ResultView{Raw: PrettyJSON(r.Raw)}
	if len(r.Prediction) > 0 {
		view.HasPrediction = true
		if v, ok := r.NumericPrediction(); ok {
			view.NumericPrediction = true
			view.Prediction = strconv.FormatFloat(v, 'f', -1, 64)
			if r.Probability != nil {
				view.Confidence = Percent(*r.Probability)
			}
		} else {
			view.Prediction = PrettyJSON(r.Prediction)
		}
	}
	if len(r.Details) > 0 {
		view.Details = PrettyJSON(r.Details)
	}
	return view
}

// Page builds the full view for state.
func Page(labels []string, state form.State) PageView {
	return PageView{
		Fields:   Fields(labels, state.Fields),
		Result:   Result(state.Result),
		InFlight: state.InFlight,
		Error:    state.Error,
	}
}

// Percent formats a probability in [0, 1] with two decimals, e.g. 97.00%.
func Percent(p float64) string {
	return percentPrinter.Sprintf("%.2f%%", p*100)
}

// PrettyJSON re-indents raw with two spaces, keeping key order. Input that is
// not valid JSON is returned unchanged.
func PrettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

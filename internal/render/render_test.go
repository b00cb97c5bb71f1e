package render

import (
	"strings"
	"testing"

	"prediction-form/internal/form"
	"prediction-form/internal/predict"
)

func mustParse(t *testing.T, body string) *predict.Result {
	t.Helper()
	r, err := predict.ParseResult([]byte(body))
	if err != nil {
		t.Fatalf("parse %s: %v", body, err)
	}
	return r
}

func TestResultNumericPrediction(t *testing.T) {
	view := Result(mustParse(t, `{"prediction": 1, "probability": 0.97}`))
	if !view.HasPrediction || !view.NumericPrediction {
		t.Fatalf("expected numeric prediction, got %+v", view)
	}
	if view.Prediction != "1" {
		t.Fatalf("expected prediction 1 got %q", view.Prediction)
	}
	if view.Confidence != "97.00%" {
		t.Fatalf("expected 97.00%% got %q", view.Confidence)
	}
	want := "{\n  \"prediction\": 1,\n  \"probability\": 0.97\n}"
	if view.Raw != want {
		t.Fatalf("raw mismatch:\n%s\nwant:\n%s", view.Raw, want)
	}
}

func TestResultStructuredPrediction(t *testing.T) {
	view := Result(mustParse(t, `{"prediction": {"label": "benign", "score": 0.2}, "probability": 0.5, "details": {"model": "rf"}}`))
	if !view.HasPrediction || view.NumericPrediction {
		t.Fatalf("expected structured prediction, got %+v", view)
	}
	if view.Prediction != "{\n  \"label\": \"benign\",\n  \"score\": 0.2\n}" {
		t.Fatalf("unexpected structured rendering %q", view.Prediction)
	}
	if view.Confidence != "" {
		t.Fatalf("confidence only accompanies numeric predictions, got %q", view.Confidence)
	}
	if view.Details != "{\n  \"model\": \"rf\"\n}" {
		t.Fatalf("unexpected details %q", view.Details)
	}
}

func TestResultTolerantShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		raw  string
	}{
		{"array", `[1,2]`, "[\n  1,\n  2\n]"},
		{"no prediction", `{"status":"ok"}`, "{\n  \"status\": \"ok\"\n}"},
		{"string", `"hello"`, `"hello"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view := Result(mustParse(t, tc.body))
			if view.HasPrediction || view.Details != "" || view.Confidence != "" {
				t.Fatalf("expected raw-only view, got %+v", view)
			}
			if view.Raw != tc.raw {
				t.Fatalf("expected %q got %q", tc.raw, view.Raw)
			}
		})
	}

	if Result(nil) != nil {
		t.Fatal("nil result should project to nil")
	}
}

func TestPercent(t *testing.T) {
	tests := map[float64]string{
		0:      "0.00%",
		0.5:    "50.00%",
		0.9712: "97.12%",
		1:      "100.00%",
	}
	for in, want := range tests {
		if got := Percent(in); got != want {
			t.Fatalf("Percent(%v): expected %q got %q", in, want, got)
		}
	}
}

func TestFields(t *testing.T) {
	var values form.Fields
	values[0] = "17.99"
	labels := []string{"mean radius", ""}

	views := Fields(labels, values)
	if len(views) != form.FieldCount {
		t.Fatalf("expected %d views got %d", form.FieldCount, len(views))
	}
	if views[0].Label != "mean radius" || views[0].Value != "17.99" || views[0].Name != "field_0" {
		t.Fatalf("unexpected first view %+v", views[0])
	}
	if views[1].Label != "Feature 2" {
		t.Fatalf("empty label should fall back, got %q", views[1].Label)
	}
	if views[29].Label != "Feature 30" || views[29].Name != "field_29" {
		t.Fatalf("unexpected last view %+v", views[29])
	}
}

func TestPage(t *testing.T) {
	state := form.State{InFlight: true, Error: "API error: 500"}
	page := Page(DefaultLabels(), state)
	if !page.InFlight || page.Error != "API error: 500" || page.Result != nil {
		t.Fatalf("unexpected page %+v", page)
	}
	if !strings.HasPrefix(page.Fields[9].Label, "Feature 10") {
		t.Fatalf("unexpected label %q", page.Fields[9].Label)
	}
}

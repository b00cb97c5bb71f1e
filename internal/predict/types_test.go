package predict

import (
	"encoding/json"
	"testing"
)

func TestParseResultShapes(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		numeric        bool
		hasPrediction  bool
		hasProbability bool
		hasDetails     bool
	}{
		{"numeric", `{"prediction": 0, "probability": 0.12}`, true, true, true, false},
		{"structured", `{"prediction": {"label": "benign", "scores": [0.1, 0.9]}}`, false, true, false, false},
		{"details", `{"prediction": 1, "details": {"model": "rf-v2"}}`, true, true, false, true},
		{"null details", `{"prediction": 1, "details": null}`, true, true, false, false},
		{"string probability", `{"prediction": 1, "probability": "high"}`, true, true, false, false},
		{"no prediction", `{"status": "ok"}`, false, false, false, false},
		{"array body", `[1, 2, 3]`, false, false, false, false},
		{"scalar body", `42`, false, false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseResult([]byte(tc.body))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, ok := result.NumericPrediction(); ok != tc.numeric {
				t.Fatalf("numeric: expected %v got %v", tc.numeric, ok)
			}
			if got := len(result.Prediction) > 0; got != tc.hasPrediction {
				t.Fatalf("prediction: expected %v got %v", tc.hasPrediction, got)
			}
			if got := result.Probability != nil; got != tc.hasProbability {
				t.Fatalf("probability: expected %v got %v", tc.hasProbability, got)
			}
			if got := len(result.Details) > 0; got != tc.hasDetails {
				t.Fatalf("details: expected %v got %v", tc.hasDetails, got)
			}
			if string(result.Raw) != tc.body {
				t.Fatalf("raw: expected %s got %s", tc.body, result.Raw)
			}
		})
	}
}

func TestParseResultRejectsInvalidJSON(t *testing.T) {
	for _, body := range []string{"", "{", "prediction=1"} {
		if _, err := ParseResult([]byte(body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestResultMarshalsVerbatim(t *testing.T) {
	body := `{"z": 1, "prediction": 2, "a": [true]}`
	result, err := ParseResult([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := json.Marshal(struct {
		Result *Result `json:"result"`
	}{result})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"result":{"z":1,"prediction":2,"a":[true]}}`
	if string(data) != want {
		t.Fatalf("expected %s got %s", want, data)
	}

	empty, err := json.Marshal(struct {
		Result *Result `json:"result"`
	}{})
	if err != nil {
		t.Fatalf("marshal nil: %v", err)
	}
	if string(empty) != `{"result":null}` {
		t.Fatalf("unexpected nil encoding %s", empty)
	}
}

package form

import (
	"errors"
	"fmt"
	"testing"

	"prediction-form/internal/predict"
)

func TestParseFeatures(t *testing.T) {
	valid := filled("0.5")
	valid[0] = "17.99"
	valid[1] = " -3 "
	valid[2] = "1e3"

	values, err := ParseFeatures(valid)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(values) != FieldCount {
		t.Fatalf("expected %d values got %d", FieldCount, len(values))
	}
	if values[0] != 17.99 || values[1] != -3 || values[2] != 1000 || values[29] != 0.5 {
		t.Fatalf("unexpected values %v", values)
	}

	bad := []string{"abc", "", "   ", "NaN", "Inf", "-Infinity", "1,5", "12abc"}
	for _, raw := range bad {
		t.Run(fmt.Sprintf("reject %q", raw), func(t *testing.T) {
			fields := filled("1")
			fields[17] = raw
			_, err := ParseFeatures(fields)
			if !errors.Is(err, ErrInvalidFields) {
				t.Fatalf("expected ErrInvalidFields got %v", err)
			}
			if err.Error() != "All fields must contain valid numbers" {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestSampleFields(t *testing.T) {
	values := make([]float64, FieldCount)
	values[0] = 17.99
	values[1] = 1001
	values[2] = 0.006399
	fields, err := SampleFields(values)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if fields[0] != "17.99" || fields[1] != "1001" || fields[2] != "0.006399" || fields[3] != "0" {
		t.Fatalf("unexpected rendering %v", fields[:4])
	}

	if _, err := SampleFields(values[:29]); err == nil {
		t.Fatal("expected error for short sample")
	}
}

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"status", &predict.StatusError{Code: 500}, "API error: 500"},
		{"wrapped status", fmt.Errorf("call: %w", &predict.StatusError{Code: 404}), "API error: 404"},
		{"transport", errors.New("prediction request: connection refused"), "prediction request: connection refused"},
		{"empty message", emptyError{}, "An error occurred while making the prediction"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorMessage(tc.err); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"prediction-form/internal/predict"
)

var (
	// ErrInvalidFields is returned when any entry does not hold a finite number.
	ErrInvalidFields = errors.New("All fields must contain valid numbers")
	// ErrFieldIndex is returned for an index outside the feature vector.
	ErrFieldIndex = errors.New("field index out of range")
)

const genericFailure = "An error occurred while making the prediction"

// ParseFeatures converts every entry to a float64. The vector is parsed all
// or nothing: a single bad entry rejects the whole submission.
func ParseFeatures(fields Fields) ([]float64, error) {
	values := make([]float64, FieldCount)
	for i, raw := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrInvalidFields
		}
		values[i] = v
	}
	return values, nil
}

// SampleFields renders reference values the way a user would type them.
func SampleFields(values []float64) (Fields, error) {
	var fields Fields
	if len(values) != FieldCount {
		return fields, fmt.Errorf("sample has %d values, want %d", len(values), FieldCount)
	}
	for i, v := range values {
		fields[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fields, nil
}

// ErrorMessage is the banner text shown for a failed submission.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *predict.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return genericFailure
}

// Outcome turns the result of a prediction call into the action that ends
// the submission.
func Outcome(result *predict.Result, err error) Action {
	if err != nil {
		return SubmitFailed{Message: ErrorMessage(err)}
	}
	return SubmitSucceeded{Result: result}
}

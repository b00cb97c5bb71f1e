package predict

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is the decoded body returned by the prediction service. The service
// owns the schema, so only the well-known keys are split out and the verbatim
// body is kept alongside them.
type Result struct {
	Raw         json.RawMessage
	Prediction  json.RawMessage
	Probability *float64
	Details     json.RawMessage
}

type resultEnvelope struct {
	Prediction  json.RawMessage `json:"prediction"`
	Probability json.RawMessage `json:"probability"`
	Details     json.RawMessage `json:"details"`
}

// ParseResult decodes a response body. Any valid JSON document is accepted;
// bodies that are not objects yield a Result carrying only Raw.
func ParseResult(body []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(body)
	var probe any
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &Result{Raw: append(json.RawMessage(nil), trimmed...)}
	if _, ok := probe.(map[string]any); !ok {
		return result, nil
	}

	var env resultEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if present(env.Prediction) {
		result.Prediction = env.Prediction
	}
	if present(env.Details) {
		result.Details = env.Details
	}
	if present(env.Probability) {
		var p float64
		if err := json.Unmarshal(env.Probability, &p); err == nil {
			result.Probability = &p
		}
	}
	return result, nil
}

// NumericPrediction reports the prediction as a number when the service sent one.
func (r *Result) NumericPrediction() (float64, bool) {
	if r == nil || len(r.Prediction) == 0 {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(r.Prediction, &v); err != nil {
		return 0, false
	}
	return v, true
}

// MarshalJSON emits the verbatim service body.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r == nil || len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// UnmarshalJSON accepts the same bodies as ParseResult.
func (r *Result) UnmarshalJSON(data []byte) error {
	parsed, err := ParseResult(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

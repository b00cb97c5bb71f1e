package api

import (
	"prediction-form/internal/form"
	"prediction-form/internal/predict"
	"prediction-form/internal/render"
)

// StateDTO is the API representation of one session's form state.
type StateDTO struct {
	Fields   []string           `json:"fields"`
	Result   *predict.Result    `json:"result"`
	InFlight bool               `json:"in_flight"`
	Error    string             `json:"error,omitempty"`
	View     *render.ResultView `json:"view,omitempty"`
	HTML     string             `json:"html"`
}

// FieldRequest carries the raw text for one input.
type FieldRequest struct {
	Value *string `json:"value"`
}

// ConfigResponse describes the form layout to clients.
type ConfigResponse struct {
	Endpoint   string   `json:"endpoint"`
	FieldCount int      `json:"field_count"`
	Labels     []string `json:"labels"`
}

// StateFromModel converts a form snapshot; html is the rendered status fragment.
func StateFromModel(state form.State, html string) StateDTO {
	fields := make([]string, form.FieldCount)
	copy(fields, state.Fields[:])
	return StateDTO{
		Fields:   fields,
		Result:   state.Result,
		InFlight: state.InFlight,
		Error:    state.Error,
		View:     render.Result(state.Result),
		HTML:     html,
	}
}

package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"prediction-form/internal/predict"
	"prediction-form/internal/util"
)

// Predictor submits a parsed feature vector to the prediction service.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (*predict.Result, error)
}

// Controller orchestrates the form operations against a Store.
type Controller struct {
	store     *Store
	predictor Predictor
	sample    Fields
}

// NewController wires a Store to a Predictor. sample must hold exactly
// FieldCount values.
func NewController(store *Store, predictor Predictor, sample []float64) (*Controller, error) {
	if store == nil {
		return nil, errors.New("store required")
	}
	if predictor == nil {
		return nil, errors.New("predictor required")
	}
	fields, err := SampleFields(sample)
	if err != nil {
		return nil, err
	}
	return &Controller{store: store, predictor: predictor, sample: fields}, nil
}

// Store exposes the underlying state container.
func (c *Controller) Store() *Store {
	return c.store
}

// UpdateField replaces the entry at index with raw, without coercion.
func (c *Controller) UpdateField(index int, raw string) (State, error) {
	if index < 0 || index >= FieldCount {
		return c.store.State(), fmt.Errorf("%w: %d", ErrFieldIndex, index)
	}
	return c.store.Dispatch(UpdateField{Index: index, Value: raw}), nil
}

// FillSample overwrites every entry with the reference sample.
func (c *Controller) FillSample() State {
	return c.store.Dispatch(FillSample{Values: c.sample})
}

// Reset empties the form.
func (c *Controller) Reset() State {
	return c.store.Dispatch(Reset{})
}

// Submit validates the fields, calls the prediction service and records the
// outcome. It blocks until the call completes.
func (c *Controller) Submit(ctx context.Context) error {
	features, err := c.begin()
	if err != nil {
		return err
	}
	return c.finish(ctx, features)
}

// SubmitAsync validates synchronously and returns the validation error
// directly. Otherwise the prediction call runs on its own goroutine and its
// outcome is delivered on the returned channel, which is then closed.
func (c *Controller) SubmitAsync(ctx context.Context) (<-chan error, error) {
	features, err := c.begin()
	if err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- c.finish(ctx, features)
	}()
	return done, nil
}

func (c *Controller) begin() ([]float64, error) {
	state := c.store.Dispatch(SubmitStarted{})
	features, err := ParseFeatures(state.Fields)
	if err != nil {
		c.store.Dispatch(SubmitFailed{Message: ErrorMessage(err)})
		logrus.Debug("prediction submission rejected by validation")
		return nil, err
	}
	return features, nil
}

func (c *Controller) finish(ctx context.Context, features []float64) error {
	timer := util.StartTimer()
	result, err := c.predictor.Predict(ctx, features)
	c.store.Dispatch(Outcome(result, err))
	if err != nil {
		logrus.WithError(err).WithFields(timer.Fields()).Warn("prediction failed")
		return err
	}
	logrus.WithFields(timer.Fields()).WithField("result", string(result.Raw)).Debug("prediction result")
	return nil
}

// Package artifact loads a serialized regression pipeline from disk and
// serves it as a prediction.Predictor.
package artifact

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/okian/cropyield/internal/domain/model"
)

// KindLinearOneHot is a linear model over one-hot encoded categorical columns
// and raw numeric columns.
const KindLinearOneHot = "linear_onehot"

// Pipeline is the decoded artifact. It is immutable after Load.
type Pipeline struct {
	Kind      string   `mapstructure:"kind"`
	Version   string   `mapstructure:"version"`
	Columns   []string `mapstructure:"columns"`
	Intercept float64  `mapstructure:"intercept"`
	// Categorical maps column -> category -> weight. Unseen categories weigh 0.
	Categorical map[string]map[string]float64 `mapstructure:"categorical"`
	Numeric     map[string]float64            `mapstructure:"numeric"`
	MinOutput   *float64                      `mapstructure:"min_output"`
}

// Name identifies the pipeline in logs and status output.
func (p *Pipeline) Name() string {
	if p.Version == "" {
		return p.Kind
	}
	return p.Kind + "@" + p.Version
}

// Predict scores each record. It never mutates the pipeline.
func (p *Pipeline) Predict(ctx context.Context, records []model.Record) ([]float64, error) {
	out := make([]float64, len(records))
	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.score(r)
	}
	return out, nil
}

func (p *Pipeline) score(r model.Record) float64 {
	y := p.Intercept
	// Fixed column order keeps the float sum reproducible.
	for _, col := range model.CategoricalColumns {
		if v, ok := r.Categorical(col); ok {
			y += p.Categorical[col][v]
		}
	}
	for _, col := range model.NumericColumns {
		if v, ok := r.Numeric(col); ok {
			y += p.Numeric[col] * v
		}
	}
	if p.MinOutput != nil && y < *p.MinOutput {
		y = *p.MinOutput
	}
	return y
}

// validate checks the pipeline against the model's column contract.
func (p *Pipeline) validate() error {
	if p.Kind != KindLinearOneHot {
		return fmt.Errorf("%w: unsupported kind %q", ErrInvalidArtifact, p.Kind)
	}
	if !slices.Equal(p.Columns, model.Columns) {
		return fmt.Errorf("%w: columns %v do not match %v", ErrInvalidArtifact, p.Columns, model.Columns)
	}
	if !finite(p.Intercept) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}
	for col, weights := range p.Categorical {
		if !slices.Contains(model.CategoricalColumns, col) {
			return fmt.Errorf("%w: %q is not a categorical column", ErrInvalidArtifact, col)
		}
		for v, w := range weights {
			if !finite(w) {
				return fmt.Errorf("%w: weight %s=%s is not finite", ErrInvalidArtifact, col, v)
			}
		}
	}
	for col, coef := range p.Numeric {
		if !slices.Contains(model.NumericColumns, col) {
			return fmt.Errorf("%w: %q is not a numeric column", ErrInvalidArtifact, col)
		}
		if !finite(coef) {
			return fmt.Errorf("%w: coefficient %s is not finite", ErrInvalidArtifact, col)
		}
	}
	if p.MinOutput != nil && !finite(*p.MinOutput) {
		return fmt.Errorf("%w: min_output is not finite", ErrInvalidArtifact)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

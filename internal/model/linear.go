package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// ridge keeps the normal equations solvable when a feature is constant
// over the training set, e.g. a circuit raced at a single temperature.
const ridge = 1e-6

// LinearModel is an ordinary least squares fit:
// delta = intercept + sum(coef[i] * x[i]).
type LinearModel struct {
	features  []string
	intercept float64
	coefs     []float64
	fitted    bool
}

type linearState struct {
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// NewLinearModel creates an unfitted linear model.
func NewLinearModel() *LinearModel {
	return &LinearModel{}
}

// Name returns the model name.
func (m *LinearModel) Name() string {
	return string(ModelTypeLinear)
}

// Features returns the training features.
func (m *LinearModel) Features() []string {
	return slices.Clone(m.features)
}

// Coefficients returns the intercept and per-feature coefficients.
func (m *LinearModel) Coefficients() (float64, []float64) {
	return m.intercept, slices.Clone(m.coefs)
}

// Fit solves (AᵀA + λI)β = Aᵀy with a Cholesky factorization, where A is X
// with a leading column of ones. The intercept is not regularized.
func (m *LinearModel) Fit(features []string, X [][]float64, y []float64) error {
	if err := checkShape(features, X, y); err != nil {
		return err
	}

	n, p := len(X), len(features)
	a := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}

	var ata mat.SymDense
	ata.SymOuterK(1, a.T())
	for j := 1; j <= p; j++ {
		ata.SetSym(j, j, ata.At(j, j)+ridge)
	}

	var aty mat.VecDense
	aty.MulVec(a.T(), mat.NewVecDense(n, slices.Clone(y)))

	var chol mat.Cholesky
	if ok := chol.Factorize(&ata); !ok {
		return errors.New("fit linear: normal equations are not positive definite")
	}

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &aty); err != nil {
		return fmt.Errorf("fit linear: %w", err)
	}

	m.features = slices.Clone(features)
	m.intercept = beta.AtVec(0)
	m.coefs = make([]float64, p)
	for j := range p {
		m.coefs[j] = beta.AtVec(j + 1)
	}
	m.fitted = true
	return nil
}

// PredictRow evaluates the fitted line.
func (m *LinearModel) PredictRow(row []float64) float64 {
	y := m.intercept
	for i, c := range m.coefs {
		if i < len(row) {
			y += c * row[i]
		}
	}
	return y
}

// Save serializes the model state to a writer.
func (m *LinearModel) Save(w io.Writer) error {
	if !m.fitted {
		return ErrNotFitted
	}
	return json.NewEncoder(w).Encode(linearState{
		Features:     m.features,
		Intercept:    m.intercept,
		Coefficients: m.coefs,
	})
}

// Load deserializes the model state from a reader.
func (m *LinearModel) Load(r io.Reader) error {
	var state linearState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return err
	}
	if len(state.Coefficients) != len(state.Features) {
		return fmt.Errorf("linear model has %d coefficients for %d features",
			len(state.Coefficients), len(state.Features))
	}
	m.features = state.Features
	m.intercept = state.Intercept
	m.coefs = state.Coefficients
	m.fitted = true
	return nil
}

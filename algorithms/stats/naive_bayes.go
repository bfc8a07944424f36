package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNotFitted         = errors.New("model has not been fitted")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmptyTrainingSet  = errors.New("empty training set")
	ErrInvalidSnapshot   = errors.New("invalid model snapshot")
)

// DefaultVarSmoothing matches the usual Gaussian naive Bayes default
const DefaultVarSmoothing = 1e-9

// GaussianNB is a Gaussian naive Bayes classifier. Each class models every
// feature as an independent normal distribution; predictions are the
// posterior class probabilities.
type GaussianNB struct {
	// VarSmoothing is the fraction of the largest feature variance added to
	// every per-class variance for stability
	VarSmoothing float64

	classes   int
	features  int
	priors    []float64
	means     *mat.Dense // classes x features
	variances *mat.Dense // classes x features
	epsilon   float64
	fitted    bool
}

// NewGaussianNB creates an unfitted model with the default variance smoothing
func NewGaussianNB() *GaussianNB {
	return &GaussianNB{VarSmoothing: DefaultVarSmoothing}
}

// Fit estimates the class priors, means and variances in one batch.
// x holds one sample per row; y holds the matching one-hot targets, one
// column per class. Classes without samples get a zero prior and can never
// be predicted.
func (nb *GaussianNB) Fit(x, y *mat.Dense) error {
	if x == nil || y == nil || x.IsEmpty() || y.IsEmpty() {
		return ErrEmptyTrainingSet
	}

	samples, features := x.Dims()
	targets, classes := y.Dims()
	if samples != targets {
		return fmt.Errorf("%w: %d samples but %d targets", ErrDimensionMismatch, samples, targets)
	}

	members := make([][]int, classes)
	target := make([]float64, classes)
	for i := range samples {
		mat.Row(target, i, y)
		c := floats.MaxIdx(target)
		members[c] = append(members[c], i)
	}

	// Smoothing is relative to the spread of the whole training set
	column := make([]float64, samples)
	maxVariance := 0.0
	for j := range features {
		mat.Col(column, j, x)
		maxVariance = math.Max(maxVariance, populationVariance(column))
	}
	epsilon := nb.VarSmoothing * maxVariance
	if epsilon == 0 {
		epsilon = nb.VarSmoothing
	}

	means := mat.NewDense(classes, features, nil)
	variances := mat.NewDense(classes, features, nil)
	priors := make([]float64, classes)
	values := make([]float64, 0, samples)

	for c, rows := range members {
		priors[c] = float64(len(rows)) / float64(samples)
		for j := range features {
			if len(rows) == 0 {
				variances.Set(c, j, epsilon)
				continue
			}
			values = values[:0]
			for _, i := range rows {
				values = append(values, x.At(i, j))
			}
			means.Set(c, j, stat.Mean(values, nil))
			variances.Set(c, j, populationVariance(values)+epsilon)
		}
	}

	nb.classes = classes
	nb.features = features
	nb.priors = priors
	nb.means = means
	nb.variances = variances
	nb.epsilon = epsilon
	nb.fitted = true

	return nil
}

// populationVariance is the biased (1/n) variance; zero for fewer than two values
func populationVariance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	_, variance := stat.MeanVariance(values, nil)
	return variance * float64(n-1) / float64(n)
}

// JointLogLikelihood returns log P(c) + log P(x|c) for every class
func (nb *GaussianNB) JointLogLikelihood(x []float64) ([]float64, error) {
	if !nb.fitted {
		return nil, ErrNotFitted
	}
	if len(x) != nb.features {
		return nil, fmt.Errorf("%w: got %d features, model has %d", ErrDimensionMismatch, len(x), nb.features)
	}

	jll := make([]float64, nb.classes)
	for c := range jll {
		if nb.priors[c] == 0 {
			jll[c] = math.Inf(-1)
			continue
		}

		logLikelihood := 0.0
		for j, v := range x {
			variance := nb.variances.At(c, j)
			diff := v - nb.means.At(c, j)
			logLikelihood -= 0.5 * (math.Log(2*math.Pi*variance) + diff*diff/variance)
		}
		jll[c] = math.Log(nb.priors[c]) + logLikelihood
	}

	return jll, nil
}

// PredictProba returns the posterior probability of every class for x
func (nb *GaussianNB) PredictProba(x []float64) ([]float64, error) {
	jll, err := nb.JointLogLikelihood(x)
	if err != nil {
		return nil, err
	}

	logEvidence := floats.LogSumExp(jll)
	for c, v := range jll {
		jll[c] = math.Exp(v - logEvidence)
	}
	return jll, nil
}

// Predict returns the most probable class index for x
func (nb *GaussianNB) Predict(x []float64) (int, error) {
	jll, err := nb.JointLogLikelihood(x)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(jll), nil
}

// Fitted reports whether Fit or FromSnapshot has produced parameters
func (nb *GaussianNB) Fitted() bool {
	return nb.fitted
}

// Classes returns the number of classes the model was fitted with
func (nb *GaussianNB) Classes() int {
	return nb.classes
}

// Features returns the feature dimension the model was fitted with
func (nb *GaussianNB) Features() int {
	return nb.features
}

// GaussianNBSnapshot is the serializable form of a fitted model.
// Means and Variances are row-major, one row per class.
type GaussianNBSnapshot struct {
	Classes   int       `json:"classes" msgpack:"classes"`
	Features  int       `json:"features" msgpack:"features"`
	Priors    []float64 `json:"priors" msgpack:"priors"`
	Means     []float64 `json:"means" msgpack:"means"`
	Variances []float64 `json:"variances" msgpack:"variances"`
	Epsilon   float64   `json:"epsilon" msgpack:"epsilon"`
}

// Snapshot exports the fitted parameters
func (nb *GaussianNB) Snapshot() (GaussianNBSnapshot, error) {
	if !nb.fitted {
		return GaussianNBSnapshot{}, ErrNotFitted
	}

	return GaussianNBSnapshot{
		Classes:   nb.classes,
		Features:  nb.features,
		Priors:    slices.Clone(nb.priors),
		Means:     slices.Clone(nb.means.RawMatrix().Data),
		Variances: slices.Clone(nb.variances.RawMatrix().Data),
		Epsilon:   nb.epsilon,
	}, nil
}

// FromSnapshot rebuilds a fitted model from exported parameters
func FromSnapshot(s GaussianNBSnapshot) (*GaussianNB, error) {
	if s.Classes <= 0 || s.Features <= 0 {
		return nil, fmt.Errorf("%w: %d classes, %d features", ErrInvalidSnapshot, s.Classes, s.Features)
	}
	size := s.Classes * s.Features
	if len(s.Priors) != s.Classes || len(s.Means) != size || len(s.Variances) != size {
		return nil, fmt.Errorf("%w: parameter lengths don't match %dx%d", ErrInvalidSnapshot, s.Classes, s.Features)
	}
	for _, v := range s.Variances {
		if !(v > 0) {
			return nil, fmt.Errorf("%w: non-positive variance %v", ErrInvalidSnapshot, v)
		}
	}

	return &GaussianNB{
		VarSmoothing: DefaultVarSmoothing,
		classes:      s.Classes,
		features:     s.Features,
		priors:       slices.Clone(s.Priors),
		means:        mat.NewDense(s.Classes, s.Features, slices.Clone(s.Means)),
		variances:    mat.NewDense(s.Classes, s.Features, slices.Clone(s.Variances)),
		epsilon:      s.Epsilon,
		fitted:       true,
	}, nil
}

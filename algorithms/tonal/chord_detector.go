package tonal

import (
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/stats"
	"github.com/RyanBlaney/sonido-chords/logging"
)

// ChordDetector classifies gromagram feature vectors into one of a closed
// set of labels using a Gaussian naive Bayes model.
//
// A detector is trained exactly once: any number of Train calls followed by
// FinishTraining. Detect is only available afterwards.
type ChordDetector[L comparable] struct {
	config   DetectorConfig
	analyzer *chroma.Gromagram
	labels   []L
	index    map[L]int
	oneHot   *mat.Dense // Row i encodes labels[i]

	// Accumulated training set, row-major
	features []float64
	targets  []float64
	examples int

	model   *stats.GaussianNB
	trained bool

	current []float64 // Normalized scratch for DetectCurrent
	logger  logging.Logger
}

// NewChordDetector creates an untrained detector extracting features with
// analyzer. Duplicate labels are collapsed, keeping the first occurrence.
func NewChordDetector[L comparable](analyzer *chroma.Gromagram, labels []L, config DetectorConfig) (*ChordDetector[L], error) {
	if analyzer == nil {
		return nil, fmt.Errorf("%w: nil analyzer", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &ChordDetector[L]{
		config:   config,
		analyzer: analyzer,
		index:    make(map[L]int, len(labels)),
		model:    stats.NewGaussianNB(),
		current:  make([]float64, analyzer.Config().NotesCount),
		logger: logging.WithFields(logging.Fields{
			"component": "chord_detector",
		}),
	}

	for _, label := range labels {
		if _, ok := d.index[label]; ok {
			d.logger.Warn("Ignoring duplicate label", logging.Fields{"label": fmt.Sprint(label)})
			continue
		}
		d.index[label] = len(d.labels)
		d.labels = append(d.labels, label)
	}
	if len(d.labels) == 0 {
		return nil, fmt.Errorf("%w: empty label set", ErrInvalidConfig)
	}

	n := len(d.labels)
	d.oneHot = mat.NewDense(n, n, nil)
	for i := range n {
		d.oneHot.Set(i, i, 1)
	}

	return d, nil
}

// Train slides a window over an interleaved clip with a hop of
// WindowSize/StepDivisor frames and adds one normalized feature vector per
// window to the training set, all labeled label.
func (d *ChordDetector[L]) Train(wav []int16, label L) error {
	if d.trained {
		return ErrAlreadyTrained
	}
	row, ok := d.index[label]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownLabel, label)
	}

	cfg := d.analyzer.Config()
	span := cfg.WindowSize * cfg.ChannelCount
	step := max(cfg.WindowSize/d.config.StepDivisor, 1) * cfg.ChannelCount
	if len(wav) < span {
		return fmt.Errorf("%w: clip of %d samples is shorter than one window of %d", ErrNoTrainingData, len(wav), span)
	}

	target := d.oneHot.RawRowView(row)
	windows, silent := 0, 0
	for start := 0; start+span <= len(wav); start += step {
		d.analyzer.Reset()
		d.analyzer.ProcessAudioFrame(wav[start : start+span])
		if !d.analyzer.Normalize() {
			silent++
		}

		d.features = append(d.features, d.analyzer.Features()...)
		d.targets = append(d.targets, target...)
		windows++
	}
	d.examples += windows

	if silent > 0 {
		d.logger.Warn("Silent windows in training clip", logging.Fields{
			"label":  fmt.Sprint(label),
			"silent": silent,
		})
	}

	d.logger.Debug("Training clip added", logging.Fields{
		"label":    fmt.Sprint(label),
		"samples":  len(wav),
		"windows":  windows,
		"examples": d.examples,
	})

	return nil
}

// FinishTraining fits the model on everything passed to Train. It must be
// called exactly once.
func (d *ChordDetector[L]) FinishTraining() error {
	if d.trained {
		return ErrAlreadyTrained
	}
	if d.examples == 0 {
		return ErrNoTrainingData
	}

	x := mat.NewDense(d.examples, d.analyzer.Config().NotesCount, d.features)
	y := mat.NewDense(d.examples, len(d.labels), d.targets)
	if err := d.model.Fit(x, y); err != nil {
		return fmt.Errorf("failed to fit model: %w", err)
	}

	d.trained = true
	d.features, d.targets = nil, nil

	d.logger.Info("Model trained", logging.Fields{
		"labels":   len(d.labels),
		"examples": d.examples,
	})

	return nil
}

// Scores returns the posterior probability of every label, in label order
func (d *ChordDetector[L]) Scores(features []float64) ([]float64, error) {
	if !d.trained {
		return nil, ErrModelNotTrained
	}
	return d.model.PredictProba(features)
}

// Detect returns the label whose posterior strictly exceeds the confidence
// threshold, or ErrNoConfidentPrediction when none does.
func (d *ChordDetector[L]) Detect(features []float64) (L, error) {
	var zero L

	scores, err := d.Scores(features)
	if err != nil {
		return zero, err
	}

	for i, score := range scores {
		if score > d.config.ConfidenceThreshold {
			return d.labels[i], nil
		}
	}

	best := common.ArgMax(scores)
	return zero, fmt.Errorf("%w: best label %v at %.3f", ErrNoConfidentPrediction, d.labels[best], scores[best])
}

// ProcessAudioFrame feeds a live interleaved frame to the analyzer
func (d *ChordDetector[L]) ProcessAudioFrame(frame []int16) {
	d.analyzer.ProcessAudioFrame(frame)
}

// DetectCurrent classifies the analyzer's current window. The analyzer's own
// feature vector is left untouched.
func (d *ChordDetector[L]) DetectCurrent() (L, error) {
	copy(d.current, d.analyzer.Features())
	common.NormalizeSum(d.current)
	return d.Detect(d.current)
}

// Labels returns the label set in one-hot order
func (d *ChordDetector[L]) Labels() []L {
	return slices.Clone(d.labels)
}

// Trained reports whether FinishTraining (or a restore) has completed
func (d *ChordDetector[L]) Trained() bool {
	return d.trained
}

// Examples returns the number of feature vectors collected by Train
func (d *ChordDetector[L]) Examples() int {
	return d.examples
}

// Analyzer returns the feature analyzer the detector trains and detects with
func (d *ChordDetector[L]) Analyzer() *chroma.Gromagram {
	return d.analyzer
}

type modelSnapshot[L comparable] struct {
	Labels    []L                      `msgpack:"labels"`
	Gromagram chroma.GromagramConfig   `msgpack:"gromagram"`
	Detector  DetectorConfig           `msgpack:"detector"`
	Model     stats.GaussianNBSnapshot `msgpack:"model"`
}

// MarshalModel serializes a trained detector with msgpack. The snapshot
// carries the analyzer configuration so it can be restored standalone.
func (d *ChordDetector[L]) MarshalModel() ([]byte, error) {
	if !d.trained {
		return nil, ErrModelNotTrained
	}

	model, err := d.model.Snapshot()
	if err != nil {
		return nil, err
	}

	return msgpack.Marshal(&modelSnapshot[L]{
		Labels:    d.labels,
		Gromagram: d.analyzer.Config(),
		Detector:  d.config,
		Model:     model,
	})
}

// RestoreChordDetector rebuilds a trained detector from MarshalModel output
func RestoreChordDetector[L comparable](data []byte) (*ChordDetector[L], error) {
	var snapshot modelSnapshot[L]
	if err := msgpack.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}

	analyzer, err := chroma.NewGromagram(snapshot.Gromagram)
	if err != nil {
		return nil, fmt.Errorf("failed to restore analyzer: %w", err)
	}

	d, err := NewChordDetector(analyzer, snapshot.Labels, snapshot.Detector)
	if err != nil {
		return nil, err
	}

	model, err := stats.FromSnapshot(snapshot.Model)
	if err != nil {
		return nil, err
	}
	if model.Classes() != len(d.labels) || model.Features() != snapshot.Gromagram.NotesCount {
		return nil, fmt.Errorf("%w: model is %dx%d, detector expects %dx%d", stats.ErrInvalidSnapshot,
			model.Classes(), model.Features(), len(d.labels), snapshot.Gromagram.NotesCount)
	}

	d.model = model
	d.trained = true

	d.logger.Debug("Model restored", logging.Fields{"labels": len(d.labels)})
	return d, nil
}

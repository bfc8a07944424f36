package chroma

// Analyzer is a streaming feature source fed with interleaved 16-bit PCM.
// Gromagram and Chromagram both implement it.
type Analyzer interface {
	ProcessPCMFrame(frame []int16) error
	Features() []float64
	FeatureNames() []string
}

var (
	_ Analyzer = (*Gromagram)(nil)
	_ Analyzer = (*Chromagram)(nil)
)

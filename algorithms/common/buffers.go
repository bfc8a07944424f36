package common

// Sample is the set of sample types the buffers hold
type Sample interface {
	~int16 | ~int32 | ~float32 | ~float64
}

// CircularBuffer is a fixed-capacity ring of the most recent samples.
// Reading from the write cursor to the end and then from the start up to
// the cursor yields the samples oldest to newest. The length never changes.
type CircularBuffer[T Sample] struct {
	buffer []T
	pos    int
}

// NewCircularBuffer creates a zeroed circular buffer holding capacity samples
func NewCircularBuffer[T Sample](capacity int) *CircularBuffer[T] {
	return &CircularBuffer[T]{
		buffer: make([]T, capacity),
	}
}

// Push stores a sample, overwriting the oldest one and advancing the
// cursor modulo the capacity.
func (cb *CircularBuffer[T]) Push(sample T) {
	if len(cb.buffer) == 0 {
		return
	}
	cb.buffer[cb.pos] = sample
	cb.pos++
	if cb.pos == len(cb.buffer) {
		cb.pos = 0
	}
}

// Halves returns the buffer contents in temporal order as two views:
// older is buffer[pos:], newer is buffer[:pos]. The views alias the buffer.
func (cb *CircularBuffer[T]) Halves() (older, newer []T) {
	return cb.buffer[cb.pos:], cb.buffer[:cb.pos]
}

// Reset zeroes the samples and rewinds the cursor
func (cb *CircularBuffer[T]) Reset() {
	clear(cb.buffer)
	cb.pos = 0
}

// ShiftBuffer keeps the most recent samples contiguous and in chronological
// order: new samples are appended at the end after shifting the rest left.
type ShiftBuffer struct {
	buffer []float64
}

// NewShiftBuffer creates a zeroed shift buffer of the given size
func NewShiftBuffer(size int) *ShiftBuffer {
	return &ShiftBuffer{
		buffer: make([]float64, size),
	}
}

// Push shifts the buffer left by len(samples) and appends samples at the end
func (sb *ShiftBuffer) Push(samples []float64) {
	size := len(sb.buffer)
	if len(samples) >= size {
		copy(sb.buffer, samples[len(samples)-size:])
		return
	}

	copy(sb.buffer, sb.buffer[len(samples):])
	copy(sb.buffer[size-len(samples):], samples)
}

// Samples returns the buffer contents, oldest first. The slice aliases the buffer.
func (sb *ShiftBuffer) Samples() []float64 {
	return sb.buffer
}

// Reset zeroes the buffer
func (sb *ShiftBuffer) Reset() {
	clear(sb.buffer)
}

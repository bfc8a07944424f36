package common

// MixToMono averages each group of channels interleaved samples of in into
// one sample of out and returns the number of mono samples written. The
// integer average truncates toward zero. A trailing partial group is still
// divided by channels. Mixing stops when out is full.
func MixToMono(channels int, in []int16, out []int16) int {
	if channels <= 1 {
		return copy(out, in)
	}

	n := 0
	for start := 0; start < len(in) && n < len(out); start += channels {
		end := min(start+channels, len(in))
		out[n] = MixGroup(in[start:end], channels)
		n++
	}

	return n
}

// MixGroup averages one interleaved group of samples over channels,
// truncating toward zero.
func MixGroup(group []int16, channels int) int16 {
	var sum int64
	for _, s := range group {
		sum += int64(s)
	}
	return int16(sum / int64(channels))
}

// MixToMonoFloat is MixToMono for the floating point path: the average is
// not truncated.
func MixToMonoFloat(channels int, in []int16, out []float64) int {
	if channels <= 1 {
		n := min(len(in), len(out))
		for i := range n {
			out[i] = float64(in[i])
		}
		return n
	}

	n := 0
	for start := 0; start < len(in) && n < len(out); start += channels {
		end := min(start+channels, len(in))

		sum := 0.0
		for _, s := range in[start:end] {
			sum += float64(s)
		}
		out[n] = sum / float64(channels)
		n++
	}

	return n
}

// MonoLength returns how many mono samples an interleaved frame of
// frameLen samples produces.
func MonoLength(channels, frameLen int) int {
	if channels <= 1 {
		return frameLen
	}
	return (frameLen + channels - 1) / channels
}

package chroma

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MIDI note numbers of commonly used reference notes (A4 = 69 = 440 Hz)
const (
	A0      = 21
	E1      = 28
	A1      = 33
	E2      = 40
	A2      = 45
	C3      = 48
	A3      = 57
	MiddleC = 60
	A4      = 69
	C5      = 72
	A5      = 81
)

// PitchClassNames lists the 12 pitch classes starting at C
var PitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteFrequency returns the 12-TET frequency of a MIDI note in Hz
func NoteFrequency(note int) float64 {
	return 440.0 * math.Pow(2.0, float64(note-69)/12.0)
}

// FrequencyToNote converts a frequency to a fractional MIDI note number
func FrequencyToNote(freqHz float64) float64 {
	if freqHz <= 0 {
		return 0
	}
	return 69.0 + 12.0*math.Log2(freqHz/440.0)
}

// NoteName returns scientific pitch notation for a MIDI note, e.g. "A4"
func NoteName(note int) string {
	pc := ((note % 12) + 12) % 12
	octave := note/12 - 1
	if note < 0 && note%12 != 0 {
		octave--
	}
	return PitchClassNames[pc] + strconv.Itoa(octave)
}

// ParseNote parses scientific pitch notation ("A1", "C#4", "Bb2") into a
// MIDI note number.
func ParseNote(name string) (int, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0, fmt.Errorf("invalid note name %q", name)
	}

	letter := strings.ToUpper(name[:1])
	pc := -1
	for i, n := range PitchClassNames {
		if n == letter {
			pc = i
			break
		}
	}
	if pc < 0 {
		return 0, fmt.Errorf("invalid note letter in %q", name)
	}

	rest := name[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		pc++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		pc--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note %q: %w", name, err)
	}

	return (octave+1)*12 + pc, nil
}

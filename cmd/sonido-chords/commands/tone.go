package commands

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/transcode"
)

var (
	toneFreq      float64
	toneNote      string
	toneDuration  time.Duration
	toneRate      int
	toneAmplitude float64
	toneChannels  int
	toneOut       string
)

var toneCmd = &cobra.Command{
	Use:   "tone --out <out.wav>",
	Short: "Write a sine tone WAV clip",
	Long: `Write a 16-bit PCM sine tone, e.g. for training data.

The pitch is given either in Hz (--freq) or as a note name (--note A2, C#3).`,
	Args: cobra.NoArgs,
	RunE: runTone,
}

func init() {
	toneCmd.Flags().StringVarP(&toneOut, "out", "o", "", "output WAV file")
	_ = toneCmd.MarkFlagRequired("out")
	toneCmd.Flags().Float64Var(&toneFreq, "freq", 440, "frequency in Hz")
	toneCmd.Flags().StringVar(&toneNote, "note", "", "note name, overrides --freq")
	toneCmd.Flags().DurationVar(&toneDuration, "duration", 2*time.Second, "clip length")
	toneCmd.Flags().IntVar(&toneRate, "rate", 44100, "sample rate in Hz")
	toneCmd.Flags().Float64Var(&toneAmplitude, "amplitude", 16000, "peak amplitude (at most 32767)")
	toneCmd.Flags().IntVar(&toneChannels, "channels", 1, "interleaved channels")
}

func runTone(cmd *cobra.Command, args []string) error {
	freq := toneFreq
	if toneNote != "" {
		note, err := chroma.ParseNote(toneNote)
		if err != nil {
			return err
		}
		freq = chroma.NoteFrequency(note)
	}

	switch {
	case freq <= 0 || freq >= float64(toneRate)/2:
		return fmt.Errorf("frequency %.2f Hz must be between 0 and Nyquist", freq)
	case toneAmplitude <= 0 || toneAmplitude > math.MaxInt16:
		return fmt.Errorf("amplitude %v out of range", toneAmplitude)
	case toneChannels <= 0:
		return errors.New("--channels must be positive")
	}

	frames := int(toneDuration.Seconds() * float64(toneRate))
	pcm := make([]int16, frames*toneChannels)
	for i := range frames {
		s := int16(toneAmplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(toneRate)))
		for c := range toneChannels {
			pcm[i*toneChannels+c] = s
		}
	}

	clip := &transcode.AudioData{PCM: pcm, SampleRate: toneRate, Channels: toneChannels}
	if err := transcode.EncodeFile(toneOut, clip); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %.2f Hz tone, %d frames at %d Hz to %s\n", freq, frames, toneRate, toneOut)
	return nil
}

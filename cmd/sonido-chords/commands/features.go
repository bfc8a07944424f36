package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
)

var (
	gromagramHop       int
	gromagramNormalize bool
)

var gromagramCmd = &cobra.Command{
	Use:   "gromagram <clip.wav>",
	Short: "Print per-note energies of a clip",
	Long: `Stream a WAV clip through a gromagram analyzer configured by the
config's gromagram section and print one tab-separated row of note
energies per hop.`,
	Args: cobra.ExactArgs(1),
	RunE: runGromagram,
}

var chromaCmd = &cobra.Command{
	Use:   "chroma <clip.wav>",
	Short: "Print 12-class chroma vectors of a clip",
	Long: `Stream a WAV clip through a chromagram analyzer configured by the
config's chromagram section and print a row every time a new chroma vector
is calculated. Columns start at G.`,
	Args: cobra.ExactArgs(1),
	RunE: runChroma,
}

func init() {
	gromagramCmd.Flags().IntVar(&gromagramHop, "hop", 0, "sample frames per hop (default a quarter window)")
	gromagramCmd.Flags().BoolVar(&gromagramNormalize, "normalize", true, "scale each row to sum to one")
}

func writeHeader(w io.Writer, names []string) {
	fmt.Fprintf(w, "time\t%s\n", strings.Join(names, "\t"))
}

func writeRow(w io.Writer, at float64, values []float64) {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = fmt.Sprintf("%.4f", v)
	}
	fmt.Fprintf(w, "%.3f\t%s\n", at, strings.Join(fields, "\t"))
}

func runGromagram(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Gromagram
	g, err := chroma.NewGromagram(cfg)
	if err != nil {
		return err
	}

	clip, err := decodeClip(args[0], cfg.SampleRate, cfg.ChannelCount)
	if err != nil {
		return err
	}

	hop := gromagramHop
	if hop <= 0 {
		hop = max(cfg.WindowSize/4, 1)
	}
	span := hop * cfg.ChannelCount

	out := cmd.OutOrStdout()
	writeHeader(out, g.FeatureNames())

	heard := 0
	for start := 0; start+span <= len(clip.PCM); start += span {
		g.ProcessAudioFrame(clip.PCM[start : start+span])
		heard += hop
		if heard < cfg.WindowSize {
			continue
		}
		if gromagramNormalize {
			g.Normalize()
		}
		writeRow(out, seconds(heard, cfg.SampleRate), g.Features())
	}

	return nil
}

func runChroma(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Chromagram
	c, err := chroma.NewChromagram(cfg)
	if err != nil {
		return err
	}

	clip, err := decodeClip(args[0], cfg.SampleRate, cfg.ChannelCount)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	writeHeader(out, c.FeatureNames())

	span := cfg.FrameSize * cfg.ChannelCount
	var last []float64
	for start := 0; start+span <= len(clip.PCM); start += span {
		if err := c.ProcessPCMFrame(clip.PCM[start : start+span]); err != nil {
			return err
		}
		if !c.IsReady() || slices.Equal(last, c.Features()) {
			continue
		}
		last = slices.Clone(c.Features())
		writeRow(out, seconds((start+span)/cfg.ChannelCount, cfg.SampleRate), last)
	}

	return nil
}

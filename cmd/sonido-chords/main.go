// Package main is the entry point for the sonido-chords CLI.
//
// Usage:
//
//	sonido-chords [flags] <command> [args]
//
// Commands:
//
//	train      - Train a chord detector from the clips listed in the config
//	detect     - Detect labels over a WAV clip with a trained model
//	gromagram  - Print per-note energies of a WAV clip
//	chroma     - Print 12-class chroma vectors of a WAV clip
//	spectrum   - Print the spectral peak of a WAV clip chunk by chunk
//	tone       - Write a sine tone WAV clip
package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-chords/cmd/sonido-chords/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

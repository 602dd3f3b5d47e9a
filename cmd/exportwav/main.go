package main

import (
	"flag"
	"fmt"
	"os"

	"shapeloop/project"
	"shapeloop/render"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: exportwav [flags] <save.json> <out.wav>\n\n")
	fmt.Fprintf(os.Stderr, "Renders a project save to a 16-bit stereo WAV file.\n\n")
	flag.PrintDefaults()
}

func main() {
	rate := flag.Int("rate", render.DefaultSampleRate, "output sample rate in Hz")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	savePath := flag.Arg(0)
	outPath := flag.Arg(1)

	p, err := project.LoadFile(savePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", savePath, err)
		os.Exit(1)
	}

	samples, err := render.Render(p.Events, p.Tempo, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render error: %v\n", err)
		os.Exit(1)
	}
	if samples == nil {
		fmt.Fprintln(os.Stderr, "Save contains no notes, nothing to render")
		os.Exit(1)
	}

	if err := render.WriteWAVFile(outPath, samples, *rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	seconds := float64(len(samples)) / 2 / float64(*rate)
	fmt.Printf("Wrote %s (%.1fs at %d Hz)\n", outPath, seconds, *rate)
}

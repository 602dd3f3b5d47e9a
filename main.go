package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"shapeloop/config"
	"shapeloop/debug"
	"shapeloop/project"
	"shapeloop/sequencer"
	"shapeloop/synth"
	"shapeloop/theme"
	"shapeloop/tui"
)

func main() {
	if os.Getenv("SHAPELOOP_DEBUG") != "" {
		debug.Enable()
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	th := theme.New(theme.LoadGPLOrDefault("palettes/ink.gpl"))

	// MIDI output, shape registry, and the latency policy for scheduling
	out := synth.NewMIDISynth(cfg.SynthOutput.PortName)
	defer out.Close()
	resolver := synth.NewShapeResolver()
	tracker := project.NewTracker()

	engine := sequencer.NewEngine(out, resolver, synth.Latency, tracker)

	rec := engine.Recorder()
	rec.SetCountIn(cfg.Recording.CountInBeats)
	rec.SetMaxLayers(cfg.Recording.MaxLayers)
	rec.SetGrid(cfg.Recording.GridBeats)

	engine.StartRuntime()
	defer engine.Shutdown()

	engine.SetTempo(cfg.UI.LastTempo)
	engine.SetLoopBeats(cfg.UI.LastLoopBeats)

	// Optional: open an existing project save passed on the command line
	if len(os.Args) > 1 {
		p, err := project.LoadFile(os.Args[1])
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		engine.LoadPersistable(p)
	}

	m := tui.NewModel(engine, tracker, th, cfg)
	prog := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Save(); err != nil {
		debug.Log("config", "save failed: %v", err)
	}
}

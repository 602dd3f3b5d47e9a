package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shapeloop/config"
	"shapeloop/project"
	"shapeloop/render"
	"shapeloop/sequencer"
	"shapeloop/theme"
)

// Live-input key maps: home row plays the piano shape, lower row guitar,
// z/x/c the percussion shapes
var pianoKeys = map[string]int{
	"a": 60, "s": 62, "d": 64, "f": 65, "g": 67, "h": 69, "j": 71, "k": 72,
}
var guitarKeys = map[string]int{
	"z": 48, "v": 52, "b": 55, "n": 57, "m": 59,
}

// Snapshot colors for the demo shapes (0xRRGGBBAA)
const (
	pianoColor  uint32 = 0x4da6ffff
	guitarColor uint32 = 0x66cc66ff
	drumColor   uint32 = 0xff8c1aff
	snareColor  uint32 = 0xffd633ff
)

type Model struct {
	Engine  *sequencer.Engine
	Tracker *project.Tracker
	Theme   *theme.Theme
	Config  *config.Config

	status   string
	quitting bool
}

type UpdateMsg struct{}

type exportDoneMsg struct {
	path string
	err  error
}

func NewModel(engine *sequencer.Engine, tracker *project.Tracker, th *theme.Theme, cfg *config.Config) Model {
	return Model{
		Engine:  engine,
		Tracker: tracker,
		Theme:   th,
		Config:  cfg,
	}
}

func ListenForUpdates(engine *sequencer.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Engine)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)

	case exportDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("export failed: %v", msg.err)
		} else if msg.path == "" {
			m.status = "nothing to export"
		} else {
			m.status = "exported " + msg.path
		}
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	st := m.Engine.Status()

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Engine.Stop()
		m.Engine.Shutdown()
		return m, tea.Quit

	case "p":
		if st.Playing && st.RecState == sequencer.RecIdle {
			m.Engine.Stop()
		} else if st.RecState == sequencer.RecIdle {
			m.Engine.Play()
		}

	case "r":
		if st.RecState != sequencer.RecIdle {
			m.Engine.StopRecording()
		} else {
			m.Engine.StartRecording()
		}

	case "+", "=":
		m.Engine.SetTempo(st.Tempo + 5)
	case "-", "_":
		m.Engine.SetTempo(st.Tempo - 5)

	case "o":
		m.Engine.SetLoopEnabled(!st.LoopEnabled)
	case "[":
		m.Engine.SetLoopBeats(st.LoopBeats / 2)
	case "]":
		m.Engine.SetLoopBeats(st.LoopBeats * 2)

	case "u":
		m.Engine.Undo()
	case "U", "ctrl+r":
		m.Engine.Redo()

	case "A":
		m.Engine.SelectAll()
	case "N":
		m.Engine.ClearSelection()
	case "Q":
		m.Engine.Quantize(0.25)
	case "C":
		m.Engine.Duplicate()
	case "X":
		m.Engine.RemoveSelected()

	case "w":
		name := m.Tracker.Name()
		if name == "" {
			name = "untitled"
		}
		if err := project.Save(name, m.Engine.ToPersistable()); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
		} else {
			m.Tracker.SetSaved(name)
			m.status = "saved project " + name
		}

	case "e":
		return m, m.exportCmd()

	case "x":
		m.trigger(sequencer.LiveNote{Kind: sequencer.KindDrum, PercKey: 1, Velocity: 0.9, Duration: 0.25, Color: drumColor, SizeHint: 60})
	case "c":
		m.trigger(sequencer.LiveNote{Kind: sequencer.KindSnare, PercKey: 0, Velocity: 0.9, Duration: 0.25, Color: snareColor, SizeHint: 40})

	default:
		if pitch, ok := pianoKeys[key]; ok {
			m.trigger(sequencer.LiveNote{Kind: sequencer.KindPiano, Pitch: pitch, Velocity: 0.8, Duration: 0.5, Color: pianoColor, SizeHint: 40})
		} else if pitch, ok := guitarKeys[key]; ok {
			m.trigger(sequencer.LiveNote{Kind: sequencer.KindGuitar, Pitch: pitch, Velocity: 0.8, Duration: 0.75, Color: guitarColor, SizeHint: 50})
		}
	}

	return m, nil
}

func (m *Model) trigger(live sequencer.LiveNote) {
	m.Engine.LiveTrigger(live)
}

// exportCmd renders the current notes to a WAV file off the UI loop
func (m Model) exportCmd() tea.Cmd {
	events := m.Engine.EventsSnapshot()
	bpm := m.Engine.Tempo()
	dir := m.Config.Export.Directory
	rate := m.Config.Export.SampleRate

	return func() tea.Msg {
		samples, err := render.Render(events, bpm, rate)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if samples == nil {
			return exportDoneMsg{}
		}
		name := "shapeloop_" + time.Now().Format("2006-01-02_15-04-05") + ".wav"
		path := filepath.Join(dir, name)
		if err := render.WriteWAVFile(path, samples, rate); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Engine.Status()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	recordStyle := lipgloss.NewStyle().Foreground(m.Theme.Record())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	transport := "STOP"
	switch {
	case st.RecState == sequencer.RecCountingIn:
		transport = fmt.Sprintf("COUNT %d", st.CountRemaining)
	case st.RecState == sequencer.RecRecording:
		transport = fmt.Sprintf("REC L%d", st.RecordTrack)
	case st.Playing:
		transport = "PLAY"
	}

	loop := "loop:off"
	if st.LoopEnabled {
		loop = fmt.Sprintf("loop:%d", st.LoopBeats)
	}

	dirty := ""
	if m.Tracker.Dirty() {
		dirty = " *"
	}

	headStyle := headerStyle
	if st.RecState != sequencer.RecIdle {
		headStyle = recordStyle
	}
	header := headStyle.Render(fmt.Sprintf("shapeloop  %-8s %3dbpm  beat %4.1f  %s%s",
		transport, st.Tempo, st.Beat, loop, dirty))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.renderPosition(st))
	out.WriteString("\n")
	out.WriteString(m.renderLayers(st))
	out.WriteString("\n")

	selInfo := fmt.Sprintf("%d notes", st.NoteCount)
	if st.SelectedCount > 0 {
		selInfo += fmt.Sprintf(", %d selected", st.SelectedCount)
	}
	undoInfo := ""
	if st.CanUndo {
		undoInfo += "  undo:yes"
	}
	if st.CanRedo {
		undoInfo += "  redo:yes"
	}
	out.WriteString(dimStyle.Render(selInfo + undoInfo))
	out.WriteString("\n\n")

	out.WriteString(dimStyle.Render("asdfghjk:piano  zvbnm:guitar  x:drum c:snare"))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("p:play  r:record  +/-:tempo  o:loop  [/]:length  u/U:undo/redo"))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("A:sel-all  Q:quantize  C:duplicate  X:delete  w:save  e:export  q:quit"))

	if st.LastAutoStop != "" {
		out.WriteString("\n\n")
		out.WriteString(warnStyle.Render("recording stopped: " + st.LastAutoStop))
	}
	if m.status != "" {
		out.WriteString("\n\n")
		out.WriteString(dimStyle.Render(m.status))
	}

	return out.String()
}

// renderPosition draws the loop window with a playhead
func (m Model) renderPosition(st sequencer.Status) string {
	if !st.LoopEnabled {
		return fmt.Sprintf("beat %.2f\n", st.Beat)
	}
	cells := st.LoopBeats * 4
	playhead := int(st.Beat / float64(st.LoopBeats) * float64(cells))
	var b strings.Builder
	for i := 0; i < cells; i++ {
		switch {
		case i == playhead && (st.Playing || st.RecState == sequencer.RecRecording):
			b.WriteString("▶")
		case i%4 == 0:
			b.WriteString("|")
		default:
			b.WriteString("·")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// renderLayers lists each recorded layer with its note count
func (m Model) renderLayers(st sequencer.Status) string {
	if len(st.TrackCounts) == 0 {
		return lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render("(no layers yet - press r and play)") + "\n"
	}

	tracks := make([]int, 0, len(st.TrackCounts))
	for t := range st.TrackCounts {
		tracks = append(tracks, t)
	}
	sort.Ints(tracks)

	var b strings.Builder
	for _, t := range tracks {
		style := lipgloss.NewStyle().Foreground(m.Theme.TrackColor(t, len(tracks)))
		marker := "▰"
		if st.RecState == sequencer.RecRecording && t == st.RecordTrack {
			marker = "●"
		}
		b.WriteString(style.Render(fmt.Sprintf("%s layer %d: %d notes", marker, t, st.TrackCounts[t])))
		b.WriteString("\n")
	}
	return b.String()
}

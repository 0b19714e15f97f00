package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gig-director/catalog"
	"gig-director/director"
	"gig-director/midi"
	"gig-director/theme"
	"gig-director/widgets"
)

// Source is the running session the model renders. host.Session
// implements it.
type Source interface {
	Latest() director.Output
	TakeEffects() []director.Effect
	Updates() <-chan struct{}
	Done() <-chan struct{}
}

// Controls are the manual overrides bound to keys. sim.Gig implements it.
type Controls interface {
	NudgeIntensity(delta float64)
	NudgeMood(delta float64)
	NextSong()
	TogglePause()
	Stop()
	CycleRole() catalog.Role
}

const logLines = 6

type Model struct {
	Source    Source
	Gig       Controls
	Store     *catalog.Store
	DeviceMgr *midi.DeviceManager // nil when MIDI is off
	Theme     *theme.Theme
	Title     string

	keys    keyMap
	help    help.Model
	meter   progress.Model
	spinner spinner.Model

	out      director.Output
	log      []string
	surfaces map[string]bool
	ended    bool
	quitting bool
	now      func() time.Time
}

type UpdateMsg struct{}

type SessionDoneMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(src Source, gig Controls, store *catalog.Store, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Accent())

	return Model{
		Source:    src,
		Gig:       gig,
		Store:     store,
		DeviceMgr: deviceMgr,
		Theme:     th,
		Title:     "gig-director",
		keys:      defaultKeyMap(),
		help:      help.New(),
		meter:     progress.New(progress.WithSolidFill(string(th.Active())), progress.WithoutPercentage(), progress.WithWidth(30)),
		spinner:   sp,
		out:       src.Latest(),
		surfaces:  make(map[string]bool),
		now:       time.Now,
	}
}

func ListenForUpdates(src Source) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-src.Updates():
			return UpdateMsg{}
		case <-src.Done():
			return SessionDoneMsg{}
		}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Source),
		ListenForDevices(m.DeviceMgr),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.Gig.TogglePause()
		case key.Matches(msg, m.keys.Louder):
			m.Gig.NudgeIntensity(0.1)
		case key.Matches(msg, m.keys.Softer):
			m.Gig.NudgeIntensity(-0.1)
		case key.Matches(msg, m.keys.Hype):
			m.Gig.NudgeMood(10)
		case key.Matches(msg, m.keys.Calm):
			m.Gig.NudgeMood(-10)
		case key.Matches(msg, m.keys.Next):
			m.Gig.NextSong()
			m.addLog("skip requested")
		case key.Matches(msg, m.keys.Role):
			m.addLog("pov " + string(m.Gig.CycleRole()))
		case key.Matches(msg, m.keys.Stop):
			m.Gig.Stop()
			m.addLog("stop requested")
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.meter.Width = max(10, min(40, msg.Width-30))

	case UpdateMsg:
		m.out = m.Source.Latest()
		for _, fx := range m.Source.TakeEffects() {
			m.addLog("effect " + string(fx))
		}
		return m, ListenForUpdates(m.Source)

	case SessionDoneMsg:
		m.out = m.Source.Latest()
		for _, fx := range m.Source.TakeEffects() {
			m.addLog("effect " + string(fx))
		}
		m.ended = true
		m.addLog("show over")

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.surfaces[event.ID] = true
		} else {
			delete(m.surfaces, event.ID)
		}
		m.addLog(fmt.Sprintf("midi %s %s", event.Type, event.ID))
		return m, ListenForDevices(m.DeviceMgr)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) addLog(line string) {
	m.log = append(m.log, m.now().Format("15:04:05")+" "+line)
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.Theme
	out := m.out

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	status := ""
	switch {
	case m.ended:
		status = warnStyle.Render("  ENDED")
	case !out.Playing && out.Phase != director.PhaseExit:
		status = warnStyle.Render("  PAUSED")
	}
	if out.Phase == director.PhaseBackstage {
		status += "  " + m.spinner.View() + dimStyle.Render(" loading")
	}
	if n := len(m.surfaces); n > 0 {
		status += dimStyle.Render(fmt.Sprintf("  midi:%d", n))
	}

	song := "-"
	if out.TotalSongs > 0 {
		song = fmt.Sprintf("%d/%d", min(out.SongIndex+1, out.TotalSongs), out.TotalSongs)
	}
	header := headerStyle.Render(fmt.Sprintf("%s  song %s  %s", m.Title, song, out.Section)) + status

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(widgets.RenderPhaseStrip(out.Phase, th))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%-10s %s %.2f\n", "intensity", m.meter.ViewAs(out.Intensity), out.Intensity))
	b.WriteString(fmt.Sprintf("%-10s %s %.0f\n", "crowd", m.meter.ViewAs(out.CrowdMood/100), out.CrowdMood))
	b.WriteString("\n")

	for _, r := range catalog.PerformerRoles {
		clip, ok := out.Clips[r]
		if !ok {
			continue
		}
		b.WriteString(widgets.RenderClipRow(string(r), clip, r == out.Current.Role, th))
		b.WriteString("\n")
	}
	if out.Crowd != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %-12s %s", "crowd", out.Crowd)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var ids []string
	if m.Store != nil {
		for _, r := range m.Store.Current().Overlays() {
			ids = append(ids, r.ID)
		}
	}
	b.WriteString(widgets.RenderChips(ids, out.Overlays, th))
	b.WriteString("\n\n")

	for _, line := range m.log {
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

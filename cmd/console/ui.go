package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/gstrazds/textworld-go/pkg/game"
	"github.com/gstrazds/textworld-go/pkg/playthrough"
	"github.com/gstrazds/textworld-go/pkg/tracker"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	pipeline *tracker.Pipeline
	run      *playthrough.Playthrough
	model    *game.Model

	gameViewport viewport.Model
	metaViewport viewport.Model
	ready        bool
	width        int
	height       int

	stepIdx  int // next playthrough step to apply
	snapshot *tracker.Snapshot
	turns    []string // rendered turns, newest last
	status   string
	err      error
}

var (
	gamePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	feedbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(pipe *tracker.Pipeline, run *playthrough.Playthrough, model *game.Model) ConsoleUI {
	gameVp := viewport.New(50, 20)
	gameVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		pipeline:     pipe,
		run:          run,
		model:        model,
		gameViewport: gameVp,
		metaViewport: metaVp,
	}
}

type resetMsg struct {
	snapshot *tracker.Snapshot
	err      error
}

func (m ConsoleUI) Init() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.pipeline.Reset(m.run.Initial)
		return resetMsg{snap, err}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		gvCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		gameWidth := int(float64(m.width)*0.65) - 4
		metaWidth := m.width - gameWidth - 6

		m.gameViewport.Width = gameWidth - 2
		m.gameViewport.Height = m.height - 4
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4

		m.ready = true
		m.writeGameContent()
		m.writeMetadata()

	case resetMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.snapshot = msg.snapshot
			m.turns = append(m.turns, m.renderTurn("(reset)", msg.snapshot))
		}
		m.writeGameContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "enter", " ", "n":
			m.advance()
			m.writeGameContent()
			m.writeMetadata()

		case "ctrl+y":
			if m.snapshot != nil {
				if err := clipboard.WriteAll(m.snapshot.Feedback); err != nil {
					m.status = "clipboard unavailable"
				} else {
					m.status = "feedback copied"
				}
				m.writeMetadata()
			}
		}
	}

	m.gameViewport, gvCmd = m.gameViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(gvCmd, mvCmd)
}

// advance applies the next recorded step to the pipeline.
func (m *ConsoleUI) advance() {
	if m.snapshot == nil || m.err != nil {
		return
	}
	if m.stepIdx >= len(m.run.Steps) {
		m.status = "end of recording"
		return
	}
	if m.snapshot.Done {
		m.status = "episode is over"
		return
	}

	step := m.run.Steps[m.stepIdx]
	m.stepIdx++

	snap, err := m.pipeline.Step(step.Command, step.Transcript)
	if err != nil {
		m.err = err
		return
	}
	m.snapshot = snap
	m.status = ""
	m.turns = append(m.turns, m.renderTurn(step.Command, snap))
}

func (m *ConsoleUI) renderTurn(command string, snap *tracker.Snapshot) string {
	width := m.gameViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(commandStyle.Render("> "+command) + "\n")
	b.WriteString(feedbackStyle.Render(wordwrap.String(strings.TrimSpace(snap.Feedback), width)))
	if snap.Won {
		b.WriteString("\n" + titleStyle.Render("*** You won! ***"))
	} else if snap.Lost {
		b.WriteString("\n" + errorStyle.Render("*** You lost! ***"))
	}
	return b.String()
}

func (m *ConsoleUI) writeGameContent() {
	width := m.gameViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	title := "PLAYTHROUGH"
	if m.model != nil && m.model.Title != "" {
		title = strings.ToUpper(m.model.Title)
	}
	content.WriteString(titleStyle.Render(title) + "\n\n")
	content.WriteString("Enter/space: next turn • ctrl+y: copy feedback • q: quit\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, turn := range m.turns {
		content.WriteString(turn + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.gameViewport.SetContent(content.String())
	m.gameViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("TRACKED STATE") + "\n\n")

	content.WriteString(fmt.Sprintf("Turn:\n%d of %d\n\n", m.stepIdx, len(m.run.Steps)))

	if snap := m.snapshot; snap != nil {
		if snap.Objective != nil && *snap.Objective != "" {
			content.WriteString("Objective:\n" + *snap.Objective + "\n\n")
		}
		if snap.Score != nil {
			if snap.MaxScore != nil {
				content.WriteString(fmt.Sprintf("Score:\n%d of %d\n\n", *snap.Score, *snap.MaxScore))
			} else {
				content.WriteString(fmt.Sprintf("Score:\n%d\n\n", *snap.Score))
			}
		}
		if snap.Moves != nil {
			content.WriteString(fmt.Sprintf("Moves:\n%d\n\n", *snap.Moves))
		}
		if snap.IntermediateReward != nil {
			content.WriteString(fmt.Sprintf("Reward:\n%+d\n\n", *snap.IntermediateReward))
		}
		if snap.LastAction != nil {
			content.WriteString("Last action:\n" + *snap.LastAction + "\n\n")
		}
		if snap.Inventory != nil {
			content.WriteString("Inventory:\n" + *snap.Inventory + "\n\n")
		}
		if len(snap.PolicyCommands) > 0 {
			content.WriteString("Policy:\n")
			for _, c := range snap.PolicyCommands {
				content.WriteString("• " + c + "\n")
			}
			content.WriteString("\n")
		}
		if len(snap.AdmissibleCommands) > 0 {
			content.WriteString("Admissible:\n")
			for _, c := range snap.AdmissibleCommands {
				content.WriteString("• " + c + "\n")
			}
			content.WriteString("\n")
		}
	}

	if m.status != "" {
		content.WriteString(statusStyle.Render(m.status) + "\n")
	}

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	gamePanel := gamePanelStyle.Render(m.gameViewport.View())
	metaPanel := metaPanelStyle.Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, gamePanel, metaPanel)
}

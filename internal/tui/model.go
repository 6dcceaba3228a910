// Package tui is the terminal editor: the active file on the left, the
// latest compile result on the right, recompiled on every change.
package tui

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/session"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// header, status and help lines plus the pane borders
	chromeHeight = 5
)

const helpText = "ctrl+n/ctrl+p file · ctrl+t target · ctrl+f field · pgup/pgdn scroll · esc quit"

// Model is the bubbletea model of the editor. It owns the session: all
// session calls happen on the bubbletea update goroutine.
type Model struct {
	sess   *session.Session
	editor textarea.Model
	output viewport.Model
	styles Styles

	width  int
	height int

	// notice is the last key action error, cleared by the next action.
	notice string
}

// New returns an editor on sess and runs the first compile.
func New(sess *session.Session) Model {
	ed := textarea.New()
	ed.ShowLineNumbers = true
	ed.CharLimit = 0
	ed.MaxHeight = 0
	ed.SetValue(sess.Buffer())
	ed.Focus()

	m := Model{
		sess:   sess,
		editor: ed,
		output: viewport.New(defaultWidth/2, defaultHeight-chromeHeight),
		styles: DefaultStyles(),
	}
	m.resize(defaultWidth, defaultHeight)
	m.sess.TriggerRecompile()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+n":
			m.act(func() error { return m.sess.NextFile(1) })
			return m, nil
		case "ctrl+p":
			m.act(func() error { return m.sess.NextFile(-1) })
			return m, nil
		case "ctrl+t":
			m.act(m.toggleTarget)
			return m, nil
		case "ctrl+f":
			m.act(m.cycleField)
			return m, nil
		case "pgup":
			m.output.SetYOffset(m.output.YOffset - m.output.Height)
			return m, nil
		case "pgdown":
			m.output.SetYOffset(m.output.YOffset + m.output.Height)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if text := m.editor.Value(); text != m.sess.Buffer() {
		m.notice = ""
		m.sess.Edit(text)
		m.refresh()
	}
	return m, cmd
}

// act runs a selection change and recompiles. On error nothing is
// recompiled and the error is shown.
func (m *Model) act(fn func() error) {
	m.notice = ""
	if err := fn(); err != nil {
		m.notice = err.Error()
		return
	}
	if m.editor.Value() != m.sess.Buffer() {
		m.editor.SetValue(m.sess.Buffer())
	}
	m.sess.TriggerRecompile()
	m.refresh()
}

func (m *Model) toggleTarget() error {
	targets := session.Targets()
	i := slices.Index(targets, m.sess.Selection().Target)
	return m.sess.SetTarget(targets[(i+1)%len(targets)])
}

func (m *Model) cycleField() error {
	kinds := field.Kinds()
	i := slices.Index(kinds, m.sess.Selection().Field)
	return m.sess.SetField(kinds[(i+1)%len(kinds)])
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	inner := max(height-chromeHeight, 3)
	left := max(width/2-2, 10)
	right := max(width-width/2-2, 10)

	m.editor.SetWidth(left)
	m.editor.SetHeight(inner)
	m.output.Width = right
	m.output.Height = inner
	m.refresh()
}

// refresh renders the latest result into the output pane.
func (m *Model) refresh() {
	res := m.sess.Result()
	var b strings.Builder
	switch res.Status {
	case session.StatusSuccess:
		b.WriteString(m.styles.OK.Render(res.Summary))
		b.WriteString("\n\n")
		b.WriteString(res.Artifact)
	case session.StatusFailure:
		b.WriteString(m.styles.Failed.Render(string(res.Stage) + " failed"))
		b.WriteString("\n\n")
		b.WriteString(res.Message)
	default:
		b.WriteString(m.styles.Pending.Render(res.StatusLine()))
	}
	m.output.SetContent(lipgloss.NewStyle().Width(m.output.Width).Render(b.String()))
}

// View implements tea.Model.
func (m Model) View() string {
	sel := m.sess.Selection()

	var tabs []string
	for _, name := range m.sess.Workspace().Names() {
		style := m.styles.Tab
		if name == sel.ActiveFile {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(name))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Title.Render("ashpad"),
		strings.Join(tabs, ""),
		m.styles.Selection.Render(string(sel.Target)+" / "+string(sel.Field)),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Pane.Render(m.editor.View()),
		m.styles.Pane.Render(m.output.View()),
	)

	res := m.sess.Result()
	status := m.styles.Pending.Render(res.Headline())
	switch {
	case m.notice != "":
		status = m.styles.Failed.Render(m.notice)
	case res.OK():
		status = m.styles.OK.Render(res.Headline())
	case res.Status == session.StatusFailure:
		status = m.styles.Failed.Render(res.Headline())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panes,
		status,
		m.styles.Help.Render(helpText),
	)
}

// Run starts the editor on the terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, sess *session.Session) error {
	p := tea.NewProgram(New(sess),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

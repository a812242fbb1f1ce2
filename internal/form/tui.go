package form

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	hint    lipgloss.Style
	errText lipgloss.Style
	success lipgloss.Style
	link    lipgloss.Style
	box     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		link:    lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39")),
		box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 2),
	}
}

type submittedMsg struct{ err error }

type celebrateMsg struct{}

// Model is the bubbletea front end of a Form.
type Model struct {
	ctx          context.Context
	form         *Form
	email        textinput.Model
	name         textinput.Model
	spinner      spinner.Model
	styles       styles
	celebrations chan struct{}

	submitting bool
	celebrated bool
	joinedAs   string
}

// NewModel builds the form itself so the celebration can be routed through
// the bubbletea event loop.
func NewModel(ctx context.Context, client Client, opts ...Option) Model {
	celebrations := make(chan struct{}, 1)
	opts = append(opts, WithCelebration(DefaultCelebrationDelay, func() {
		select {
		case celebrations <- struct{}{}:
		default:
		}
	}))

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 255
	email.Width = 40
	email.Focus()

	name := textinput.New()
	name.Placeholder = "First name (optional)"
	name.CharLimit = 255
	name.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:          ctx,
		form:         New(client, opts...),
		email:        email,
		name:         name,
		spinner:      sp,
		styles:       defaultStyles(),
		celebrations: celebrations,
	}
}

func (m Model) Form() *Form {
	return m.form
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForCelebration())
}

func (m Model) waitForCelebration() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.celebrations:
			return celebrateMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) submit() tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: m.form.SubmitName(m.ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		case "ctrl+r":
			if m.form.State().Success {
				m.form.Reset()
				m.celebrated = false
				m.email.Reset()
				m.name.Reset()
				m.name.Blur()
				m.email.Focus()
				return m, nil
			}
		}

	case submittedMsg:
		m.submitting = false
		if msg.err == nil {
			m.email.Reset()
			m.name.Reset()
			m.name.Blur()
		}
		return m, nil

	case celebrateMsg:
		m.celebrated = true
		return m, m.waitForCelebration()

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.form.State().Step == StepEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.name, cmd = m.name.Update(msg)
	}
	return m, cmd
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	state := m.form.State()

	switch {
	case state.Success:
		return m, tea.Quit
	case m.submitting:
		return m, nil
	case state.Step == StepEmail:
		m.form.SetEmail(m.email.Value())
		if m.form.SubmitEmail() {
			m.email.Blur()
			m.name.Focus()
			return m, textinput.Blink
		}
		return m, nil
	default:
		m.form.SetName(m.name.Value())
		m.joinedAs = m.name.Value()
		m.submitting = true
		return m, tea.Batch(m.spinner.Tick, m.submit())
	}
}

func (m Model) View() string {
	state := m.form.State()
	var b strings.Builder

	b.WriteString(m.styles.title.Render("Join the waitlist"))
	b.WriteString("\n\n")

	switch {
	case state.Success:
		b.WriteString(m.styles.success.Render("You're on the list, " + bannerName(m.joinedAs) + "!"))
		if m.celebrated {
			b.WriteString(" 🎉")
		}
		b.WriteString("\n\nYour referral code: " + state.Code)
		b.WriteString("\nShare your link to move up:\n")
		b.WriteString(m.styles.link.Render(state.ShareLink))
		b.WriteString("\n\n" + m.styles.hint.Render("enter to quit • ctrl+r to start over"))

	case state.Step == StepEmail:
		b.WriteString(m.styles.label.Render("Email"))
		b.WriteString("\n" + m.email.View())
		b.WriteString("\n\n" + m.styles.hint.Render("enter to continue • esc to quit"))

	default:
		b.WriteString(m.styles.hint.Render(state.Email) + "\n\n")
		b.WriteString(m.styles.label.Render("Name"))
		b.WriteString("\n" + m.name.View())
		if m.submitting {
			b.WriteString("\n\n" + m.spinner.View() + " Saving your spot...")
		} else {
			b.WriteString("\n\n" + m.styles.hint.Render("enter to join • esc to quit"))
		}
	}

	if state.Message != "" {
		b.WriteString("\n\n" + m.styles.errText.Render(state.Message))
	}

	return m.styles.box.Render(b.String()) + "\n"
}

func bannerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "friend"
	}
	return cases.Title(language.Und).String(name)
}

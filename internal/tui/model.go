// Package tui is the bilingual terminal chat front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/kotae/internal/locale"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/search"
)

// Answerer is the TUI-facing subset of the search engine.
type Answerer interface {
	Answer(ctx context.Context, query string) (*models.Resolution, error)
}

// Summary is the corpus statistics line shown under the title.
type Summary struct {
	Topics     int
	Languages  int
	VectorSize int
}

type exchange struct {
	query string
	res   *models.Resolution
	err   error
}

// answerMsg carries a finished lookup back into Update.
type answerMsg exchange

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	answerer Answerer
	summary  Summary
	lang     string
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	status   string
	ready    bool
	// pending is set while a lookup runs; new questions wait for it.
	pending bool
}

// New creates a chat model in the given language.
func New(answerer Answerer, summary Summary, lang string) Model {
	if l, err := models.NormalizeLang(lang); err == nil {
		lang = l
	} else {
		lang = models.LangEnglish
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = locale.For(lang).Placeholder
	ti.Focus()
	ti.CharLimit = 500
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ctx:      ctx,
		cancel:   cancel,
		answerer: answerer,
		summary:  summary,
		lang:     lang,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   locale.For(lang).Tip,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Lang returns the current interface language.
func (m Model) Lang() string { return m.lang }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := transcriptStyle.GetFrameSize()
		_, qh := inputStyle.GetFrameSize()
		reserved := 4 + 1 + qh + 1 + 1 // title, subtitle, stats, quick row; input; status; help
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-fh-1)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit
		case tea.KeyTab:
			m.lang = locale.Next(m.lang)
			strs := locale.For(m.lang)
			m.input.Placeholder = strs.Placeholder
			m.status = strs.CurrentLanguage
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			if m.pending {
				return m, nil
			}
			cmd := m.ask(m.input.Value())
			m.input.Reset()
			return m, cmd
		case tea.KeyRunes:
			if m.input.Value() == "" && len(msg.Runes) == 1 {
				if q, ok := m.quickQuestion(msg.Runes[0]); ok {
					if m.pending {
						return m, nil
					}
					return m, m.ask(q)
				}
			}
		}
	case answerMsg:
		m.pending = false
		m.history = append(m.history, exchange(msg))
		strs := locale.For(m.lang)
		if msg.err != nil {
			m.status = errorText(strs, msg.err)
		} else {
			m.status = fmt.Sprintf("%s %s", locale.TierIcon(msg.res.Tier), strs.TierLabel(msg.res.Tier))
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// quickQuestion maps the keys 1..n to the current language's suggestions.
func (m Model) quickQuestion(r rune) (string, bool) {
	qs := locale.For(m.lang).QuickQuestions
	i := int(r - '1')
	if i < 0 || i >= len(qs) {
		return "", false
	}
	return qs[i].Query, true
}

// ask returns the command that looks query up off the UI loop, or nil for
// blank input.
func (m *Model) ask(query string) tea.Cmd {
	strs := locale.For(m.lang)
	query = strings.TrimSpace(query)
	if query == "" {
		m.status = strs.EmptyQuery
		return nil
	}
	m.pending = true
	m.status = strs.Searching
	ctx, answerer := m.ctx, m.answerer
	return func() tea.Msg {
		res, err := answerer.Answer(ctx, query)
		return answerMsg{query: query, res: res, err: err}
	}
}

func errorText(strs *locale.Strings, err error) string {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return strs.EmptyQuery
	case errors.Is(err, search.ErrNotReady):
		return strs.NotReady
	default:
		return strs.NoAnswer
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return locale.For(m.lang).Searching
	}
	strs := locale.For(m.lang)
	var b strings.Builder
	b.WriteString(titleStyle.Render(strs.Title) + "\n")
	b.WriteString(subtleStyle.Render(strs.Subtitle) + "\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%s: %d • %s: %d • %s: %d",
		strs.StatsTopics, m.summary.Topics,
		strs.StatsLanguages, m.summary.Languages,
		strs.StatsVectorSize, m.summary.VectorSize)) + "\n")
	b.WriteString(m.renderQuickQuestions() + "\n")
	b.WriteString(transcriptStyle.Render(m.viewport.View()) + "\n")
	b.WriteString(inputStyle.Render(m.input.View()) + "\n")
	b.WriteString(statusStyle.Render(m.status) + "\n")
	b.WriteString(subtleStyle.Render(strs.Help))
	return b.String()
}

func (m Model) renderQuickQuestions() string {
	strs := locale.For(m.lang)
	parts := make([]string, len(strs.QuickQuestions))
	for i, q := range strs.QuickQuestions {
		parts[i] = fmt.Sprintf("%d %s %s", i+1, q.Icon, q.Label)
	}
	return quickStyle.Render(strs.QuickHeading + ": " + strings.Join(parts, "  "))
}

func (m Model) renderTranscript() string {
	strs := locale.For(m.lang)
	if len(m.history) == 0 {
		return subtleStyle.Render(strs.InputPrompt)
	}
	blocks := make([]string, 0, len(m.history))
	for _, ex := range m.history {
		var b strings.Builder
		b.WriteString(queryStyle.Render("> "+ex.query) + "\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render(errorText(strs, ex.err)))
			blocks = append(blocks, b.String())
			continue
		}
		b.WriteString(lipgloss.NewStyle().Width(max(20, m.viewport.Width-2)).Render(strs.DisplayAnswer(ex.res)) + "\n")
		b.WriteString(tierStyle(ex.res.Tier).Render(fmt.Sprintf("%s %s (%s: %.2f)",
			locale.TierIcon(ex.res.Tier), strs.TierLabel(ex.res.Tier), strs.DistanceLabel, ex.res.Distance)))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func tierStyle(t models.Tier) lipgloss.Style {
	switch t {
	case models.High:
		return highStyle
	case models.Medium, models.Low:
		return mediumStyle
	default:
		return errorStyle
	}
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	quickStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	queryStyle      = lipgloss.NewStyle().Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	highStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mediumStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

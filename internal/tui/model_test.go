package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperjump/kotae/internal/locale"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/search"
)

type fakeAnswerer struct {
	queries []string
	res     *models.Resolution
	err     error
}

func (f *fakeAnswerer) Answer(_ context.Context, query string) (*models.Resolution, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

// submit sends msg and, when Update starts a lookup, runs it and delivers
// the result.
func submit(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	if cmd == nil {
		return nm
	}
	res := cmd()
	if _, ok := res.(answerMsg); !ok {
		t.Fatalf("command returned %T, want answerMsg", res)
	}
	return update(t, nm, res)
}

func sized(t *testing.T, m Model) Model {
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestModel_EnterAsksQuestion(t *testing.T) {
	fa := &fakeAnswerer{res: &models.Resolution{Answer: "Ottawa uses OC Transpo buses.", Distance: 0.4, Tier: models.High, LineIndex: 8}}
	m := sized(t, New(fa, Summary{Topics: 6, Languages: 2, VectorSize: 95}, "en"))
	m = typeText(t, m, "transit?")
	m = submit(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(fa.queries) != 1 || fa.queries[0] != "transit?" {
		t.Fatalf("queries: got %v", fa.queries)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
	view := m.View()
	for _, want := range []string{"OC Transpo", "High Confidence", "FAQ Topics: 6"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_EmptyEnterWarns(t *testing.T) {
	fa := &fakeAnswerer{}
	m := sized(t, New(fa, Summary{}, "es"))
	m = submit(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(fa.queries) != 0 {
		t.Errorf("empty input should not query, got %v", fa.queries)
	}
	if m.status != locale.For("es").EmptyQuery {
		t.Errorf("status: got %q", m.status)
	}
}

func TestModel_QuickQuestionKeys(t *testing.T) {
	fa := &fakeAnswerer{res: &models.Resolution{Answer: "x", Tier: models.Medium}}
	m := sized(t, New(fa, Summary{}, "es"))
	m = submit(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'6'}})
	if len(fa.queries) != 1 || fa.queries[0] != "¿Qué es UHIP?" {
		t.Fatalf("queries: got %v", fa.queries)
	}

	// Digits typed after other text go to the input.
	m = typeText(t, m, "a1")
	if len(fa.queries) != 1 {
		t.Errorf("digit inside text triggered a query: %v", fa.queries)
	}
	if m.input.Value() != "a1" {
		t.Errorf("input: got %q", m.input.Value())
	}

	m.input.Reset()
	update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}})
	if len(fa.queries) != 1 {
		t.Errorf("out-of-range key triggered a query: %v", fa.queries)
	}
}

func TestModel_TabSwitchesLanguage(t *testing.T) {
	fa := &fakeAnswerer{res: &models.Resolution{Answer: resolverFallback, Distance: 2, Tier: models.NotFound, LineIndex: -1}}
	m := sized(t, New(fa, Summary{}, "en"))
	m = submit(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if !strings.Contains(m.View(), "Topic Not Found") {
		t.Error("english view missing not-found label")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Lang() != models.LangSpanish {
		t.Fatalf("lang: got %q", m.Lang())
	}
	view := m.View()
	if !strings.Contains(view, "Tema No Encontrado") {
		t.Error("spanish view missing not-found label")
	}
	if m.status != locale.For("es").CurrentLanguage {
		t.Errorf("status: got %q", m.status)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Lang() != models.LangEnglish {
		t.Errorf("lang after second tab: got %q", m.Lang())
	}
}

const resolverFallback = "out of domain"

func TestModel_ErrorsAreLocalized(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{search.ErrNotReady, locale.For("en").NotReady},
		{search.ErrEmptyQuery, locale.For("en").EmptyQuery},
		{context.DeadlineExceeded, locale.For("en").NoAnswer},
	}
	for _, tt := range tests {
		fa := &fakeAnswerer{err: tt.err}
		m := sized(t, New(fa, Summary{}, "en"))
		m = typeText(t, m, "hello")
		m = submit(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.status != tt.want {
			t.Errorf("%v: status %q, want %q", tt.err, m.status, tt.want)
		}
	}
}

func TestModel_LookupRunsOutsideUpdate(t *testing.T) {
	fa := &fakeAnswerer{res: &models.Resolution{Answer: "Main Street.", Distance: 0.2, Tier: models.High}}
	m := sized(t, New(fa, Summary{}, "en"))
	m = typeText(t, m, "where")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected a lookup command")
	}
	if len(fa.queries) != 0 {
		t.Fatalf("Answer called inside Update: %v", fa.queries)
	}
	if !m.pending || m.status != locale.For("en").Searching {
		t.Errorf("pending = %v, status = %q", m.pending, m.status)
	}

	// A second question waits for the first.
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}}); again != nil {
		t.Error("quick question started while a lookup was pending")
	}

	m = update(t, m, cmd())
	if m.pending || len(fa.queries) != 1 || len(m.history) != 1 {
		t.Errorf("pending = %v, queries = %v, history = %d", m.pending, fa.queries, len(m.history))
	}
	if !strings.Contains(m.View(), "Main Street.") {
		t.Error("view missing answer")
	}
}

func TestModel_QuitCancelsLookups(t *testing.T) {
	m := New(&fakeAnswerer{}, Summary{}, "en")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.ctx.Err() == nil {
		t.Error("context not canceled on quit")
	}
}

func TestModel_Quit(t *testing.T) {
	m := New(&fakeAnswerer{}, Summary{}, "en")
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := m.Update(tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("key %v: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %v: expected tea.QuitMsg", k)
		}
	}
}

func TestNew_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	m := New(&fakeAnswerer{}, Summary{}, "fr")
	if m.Lang() != models.LangEnglish {
		t.Errorf("lang: got %q", m.Lang())
	}
	if m.View() != locale.For("en").Searching {
		t.Errorf("unsized view: got %q", m.View())
	}
}

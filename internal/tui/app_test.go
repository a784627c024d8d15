package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type stubPage struct {
	id      string
	nav     *PageNav
	inits   int
	updates int
}

func (s *stubPage) ID() string    { return s.id }
func (s *stubPage) Init() tea.Cmd { s.inits++; return nil }
func (s *stubPage) Update(tea.Msg) (tea.Cmd, *PageNav) {
	s.updates++
	return nil, s.nav
}
func (s *stubPage) View(width, height int) string { return s.id }

func TestApp_FirstPageIsDefault(t *testing.T) {
	t.Parallel()

	app := NewApp(NewKeypadPage(nil), &stubPage{id: "other"})
	if got := app.ActivePage(); got != "keypad" {
		t.Fatalf("active page = %q, want keypad", got)
	}
}

func TestApp_NavigatesToKnownPage(t *testing.T) {
	t.Parallel()

	first := &stubPage{id: "first", nav: &PageNav{PageID: "second"}}
	second := &stubPage{id: "second"}
	app := NewApp(first, second)

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := app.ActivePage(); got != "second" {
		t.Fatalf("active page = %q, want second", got)
	}
	if second.inits != 1 {
		t.Fatalf("second page Init called %d times, want 1", second.inits)
	}
	if got := app.View(); got != "second" {
		t.Fatalf("View() = %q, want second", got)
	}
}

func TestApp_IgnoresUnknownPage(t *testing.T) {
	t.Parallel()

	first := &stubPage{id: "first", nav: &PageNav{PageID: "missing"}}
	app := NewApp(first)
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := app.ActivePage(); got != "first" {
		t.Fatalf("active page = %q, want first", got)
	}
}

func TestApp_RoutesKeysToKeypad(t *testing.T) {
	t.Parallel()

	page := NewKeypadPage(nil)
	app := NewApp(page)
	for _, r := range "4/2=" {
		app.Update(runes(string(r)))
	}
	if got := page.Display(); got != "2" {
		t.Fatalf("display = %q, want 2", got)
	}
}

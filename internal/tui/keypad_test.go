package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/tally/internal/calc"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeKeys(p *KeypadPage, s string) {
	for _, r := range s {
		p.Update(runes(string(r)))
	}
}

func TestKeypadPage_TypedKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typed string
		want  string
	}{
		{"7+3=", "10"},
		{"1/4=", "0.25"},
		{"6*7=", "42"},
		{"6x7=", "42"},
		{"50%", "0.5"},
		{"1/0=", calc.ErrorDisplay},
		{"12c", "0"},
		{"5n", "-5"},
	}

	for _, tt := range tests {
		p := NewKeypadPage(nil)
		typeKeys(p, tt.typed)
		if got := p.Display(); got != tt.want {
			t.Errorf("typed %q -> %q, want %q", tt.typed, got, tt.want)
		}
	}
}

func TestKeypadPage_EnterEqualsAndEscClears(t *testing.T) {
	t.Parallel()

	p := NewKeypadPage(nil)
	typeKeys(p, "8-5")
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := p.Display(); got != "3" {
		t.Fatalf("after enter display = %q, want 3", got)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := p.Display(); got != "0" {
		t.Fatalf("after esc display = %q, want 0", got)
	}
}

func TestKeypadPage_ClearBindings(t *testing.T) {
	t.Parallel()

	keys := DefaultKeyMap()
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyDelete}, runes("c")} {
		if !key.Matches(msg, keys.Clear) {
			t.Fatalf("%q does not match the clear binding", msg.String())
		}

		p := NewKeypadPage(nil)
		typeKeys(p, "42")
		p.Update(msg)
		if got := p.Display(); got != "0" {
			t.Fatalf("after %q display = %q, want 0", msg.String(), got)
		}
		if p.Focused() != calc.KeyClear {
			t.Fatalf("after %q cursor on %v, want AC", msg.String(), p.Focused())
		}
	}
}

func TestKeypadPage_CursorNavigation(t *testing.T) {
	t.Parallel()

	p := NewKeypadPage(nil)
	if got := p.Focused(); got != calc.KeyEquals {
		t.Fatalf("initial focus = %v, want =", got)
	}

	steps := []struct {
		msg  tea.KeyMsg
		want calc.Key
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, calc.KeyDecimal},
		{tea.KeyMsg{Type: tea.KeyLeft}, calc.KeyZero},
		{tea.KeyMsg{Type: tea.KeyLeft}, calc.KeyZero},
		{tea.KeyMsg{Type: tea.KeyRight}, calc.KeyDecimal},
		{tea.KeyMsg{Type: tea.KeyUp}, calc.KeyThree},
		{tea.KeyMsg{Type: tea.KeyUp}, calc.KeySix},
		{tea.KeyMsg{Type: tea.KeyRight}, calc.KeySubtract},
		{tea.KeyMsg{Type: tea.KeyRight}, calc.KeySubtract},
		{tea.KeyMsg{Type: tea.KeyUp}, calc.KeyMultiply},
		{tea.KeyMsg{Type: tea.KeyUp}, calc.KeyDivide},
		{tea.KeyMsg{Type: tea.KeyUp}, calc.KeyDivide},
		{tea.KeyMsg{Type: tea.KeyDown}, calc.KeyMultiply},
	}
	for i, step := range steps {
		p.Update(step.msg)
		if got := p.Focused(); got != step.want {
			t.Fatalf("step %d (%v): focus = %v, want %v", i, step.msg, got, step.want)
		}
	}
}

func TestKeypadPage_DownFromSecondColumnLandsOnZero(t *testing.T) {
	t.Parallel()

	p := NewKeypadPage(nil)
	typeKeys(p, "2")
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := p.Focused(); got != calc.KeyZero {
		t.Fatalf("focus = %v, want 0", got)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := p.Focused(); got != calc.KeyDecimal {
		t.Fatalf("focus = %v, want .", got)
	}
}

func TestKeypadPage_SpacePressesFocusedKey(t *testing.T) {
	t.Parallel()

	p := NewKeypadPage(nil)
	typeKeys(p, "9")
	p.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if got := p.Display(); got != "99" {
		t.Fatalf("display = %q, want 99", got)
	}
}

func TestKeypadPage_Quit(t *testing.T) {
	t.Parallel()

	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		p := NewKeypadPage(nil)
		cmd, nav := p.Update(msg)
		if nav != nil {
			t.Fatalf("quit returned navigation %+v", nav)
		}
		if cmd == nil {
			t.Fatalf("%v: expected quit command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%v: command did not quit", msg)
		}
	}
}

func TestKeypadPage_ViewShowsDisplayAndPending(t *testing.T) {
	t.Parallel()

	p := NewKeypadPage(nil)
	typeKeys(p, "12*3")

	view := p.View(0, 0)
	if !strings.Contains(view, "12 ×") {
		t.Errorf("view missing pending operation:\n%s", view)
	}
	if !strings.Contains(view, "3") {
		t.Errorf("view missing display:\n%s", view)
	}
	for _, row := range calc.Keypad {
		for _, k := range row {
			if !strings.Contains(view, k.Label()) {
				t.Errorf("view missing key %q", k.Label())
			}
		}
	}
}

func TestKeypadPage_HelpToggle(t *testing.T) {
	t.Parallel()

	p := NewKeypadPage(nil)
	short := p.View(0, 0)
	p.Update(runes("?"))
	full := p.View(0, 0)

	if !p.showHelp {
		t.Fatal("help not toggled on")
	}
	if !strings.Contains(full, "press focused") || strings.Contains(short, "press focused") {
		t.Fatal("full help should list the press binding only when expanded")
	}
}

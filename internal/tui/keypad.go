package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/tally/internal/calc"
)

const (
	buttonWidth = 7
	buttonGap   = 1
	gridColumns = 4
)

// cell is a cursor position on the keypad. The zero key occupies
// columns 0 and 1 of the last row; the cursor always sits on column 0
// when it is there.
type cell struct {
	row, col int
}

// KeypadPage is the calculator screen: a display over the button grid.
type KeypadPage struct {
	engine   *calc.Engine
	keys     KeyMap
	help     help.Model
	cursor   cell
	showHelp bool
}

// NewKeypadPage creates the keypad page around engine.
func NewKeypadPage(engine *calc.Engine) *KeypadPage {
	if engine == nil {
		engine = calc.New()
	}
	return &KeypadPage{
		engine: engine,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		cursor: cellOf(calc.KeyEquals),
	}
}

func (p *KeypadPage) ID() string { return "keypad" }

func (p *KeypadPage) Init() tea.Cmd { return nil }

// Display returns what the calculator currently shows.
func (p *KeypadPage) Display() string { return p.engine.Display() }

// Focused returns the key under the cursor.
func (p *KeypadPage) Focused() calc.Key { return keyAt(p.cursor) }

func (p *KeypadPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.help.Width = msg.Width
		return nil, nil

	case tea.KeyMsg:
		return p.handleKey(msg), nil
	}
	return nil, nil
}

func (p *KeypadPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.ForceQuit), key.Matches(msg, p.keys.Quit):
		return tea.Quit
	case key.Matches(msg, p.keys.Help):
		p.showHelp = !p.showHelp
		p.help.ShowAll = p.showHelp
	case key.Matches(msg, p.keys.Up):
		p.move(-1, 0)
	case key.Matches(msg, p.keys.Down):
		p.move(1, 0)
	case key.Matches(msg, p.keys.Left):
		p.move(0, -1)
	case key.Matches(msg, p.keys.Right):
		p.move(0, 1)
	case key.Matches(msg, p.keys.Press):
		p.engine.Apply(keyAt(p.cursor))
	case key.Matches(msg, p.keys.Equals):
		p.press(calc.KeyEquals)
	case key.Matches(msg, p.keys.Clear):
		p.press(calc.KeyClear)
	case key.Matches(msg, p.keys.SignToggle):
		p.press(calc.KeySignToggle)
	default:
		if k, err := calc.ParseKey(msg.String()); err == nil {
			p.press(k)
		}
	}
	return nil
}

// press applies k and moves the cursor onto it.
func (p *KeypadPage) press(k calc.Key) {
	p.engine.Apply(k)
	p.cursor = cellOf(k)
}

func (p *KeypadPage) move(dr, dc int) {
	last := len(calc.Keypad) - 1
	next := cell{
		row: clamp(p.cursor.row+dr, 0, last),
		col: clamp(p.cursor.col+dc, 0, gridColumns-1),
	}
	// Step over the second half of the wide zero key.
	if dc != 0 && next.row == last && keyAt(next) == keyAt(p.cursor) {
		next.col = clamp(next.col+dc, 0, gridColumns-1)
	}
	p.cursor = cellOf(keyAt(next))
}

func (p *KeypadPage) View(width, height int) string {
	skin := ActiveSkin()

	content := lipgloss.JoinVertical(lipgloss.Right,
		p.renderDisplay(skin),
		"",
		p.renderGrid(skin),
		"",
		p.help.View(p.keys),
	)

	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceBackground(skin.color(skin.Background)))
}

func gridWidth() int {
	return gridColumns*buttonWidth + (gridColumns-1)*buttonGap
}

func (p *KeypadPage) renderDisplay(skin Skin) string {
	snap := p.engine.Snapshot()

	pending := ""
	if snap.Pending != calc.OpNone {
		pending = calc.FormatNumber(snap.Accumulator) + " " + snap.PendingSymbol
	}
	pendingLine := lipgloss.NewStyle().
		Width(gridWidth()).
		Align(lipgloss.Right).
		Foreground(skin.color(skin.Dim)).
		Render(pending)

	fg := skin.Text
	if snap.Error {
		fg = skin.Error
	}
	value := snap.Display
	if limit := gridWidth() - 2; len(value) > limit {
		value = "…" + value[len(value)-limit+1:]
	}
	valueLine := lipgloss.NewStyle().
		Width(gridWidth()).
		Align(lipgloss.Right).
		Bold(true).
		Foreground(skin.color(fg)).
		Render(value)

	return lipgloss.JoinVertical(lipgloss.Right, pendingLine, valueLine)
}

func (p *KeypadPage) renderGrid(skin Skin) string {
	gap := strings.Repeat(" ", buttonGap)
	rows := make([]string, 0, len(calc.Keypad))
	for _, row := range calc.Keypad {
		buttons := make([]string, 0, len(row)*2)
		for i, k := range row {
			if i > 0 {
				buttons = append(buttons, gap)
			}
			w := buttonWidth
			if k == calc.KeyZero {
				w = 2*buttonWidth + buttonGap
			}
			buttons = append(buttons, renderButton(skin, k, w, cellOf(k) == p.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderButton(skin Skin, k calc.Key, width int, focused bool) string {
	bg := skin.Digit
	switch {
	case k.IsOperator() || k == calc.KeyEquals:
		bg = skin.Operator
	case k == calc.KeyClear || k == calc.KeyPercent || k == calc.KeySignToggle:
		bg = skin.Function
	}

	style := lipgloss.NewStyle().
		Width(width).
		Padding(1, 0).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(skin.color(skin.Text)).
		Background(skin.color(bg))
	if focused {
		style = style.Foreground(skin.color(skin.Background)).Background(skin.color(skin.Focus))
	}
	return style.Render(k.Label())
}

// keyAt returns the key drawn at c.
func keyAt(c cell) calc.Key {
	row := calc.Keypad[c.row]
	if c.row == len(calc.Keypad)-1 {
		// zero spans two columns
		switch {
		case c.col <= 1:
			return row[0]
		default:
			return row[c.col-1]
		}
	}
	return row[c.col]
}

// cellOf returns the cursor position of k.
func cellOf(k calc.Key) cell {
	for r, row := range calc.Keypad {
		for i, rk := range row {
			if rk != k {
				continue
			}
			if r == len(calc.Keypad)-1 && i > 0 {
				return cell{row: r, col: i + 1}
			}
			return cell{row: r, col: i}
		}
	}
	return cell{}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

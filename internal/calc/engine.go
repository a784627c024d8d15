// Package calc implements the keypad calculator: a state machine that
// turns a sequence of key presses into the string shown on the display.
//
// The engine holds one accumulator and at most one pending operation, so
// "2 + 3 × 4 =" evaluates left to right to 20. An Engine is not safe for
// concurrent use; callers that share one must serialize access.
package calc

// ErrorDisplay is shown in place of a number when a result is not finite.
const ErrorDisplay = "Error"

const initialDisplay = "0"

// Engine is the calculator state. The zero value is not ready for use;
// call New.
type Engine struct {
	display           string
	accumulator       float64
	pending           Operation
	justEvaluated     bool
	justChoseOperator bool
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Display           string    `json:"display"`
	Accumulator       float64   `json:"accumulator"`
	Pending           Operation `json:"-"`
	PendingSymbol     string    `json:"pending,omitempty"`
	JustEvaluated     bool      `json:"just_evaluated"`
	JustChoseOperator bool      `json:"just_chose_operator"`
	Error             bool      `json:"error"`
}

// New returns an engine showing "0" with nothing pending.
func New() *Engine {
	e := &Engine{}
	e.Reset()
	return e
}

// Reset restores the initial state, exactly like pressing AC.
func (e *Engine) Reset() {
	*e = Engine{display: initialDisplay}
}

// Display returns the current display string.
func (e *Engine) Display() string { return e.display }

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Display:           e.display,
		Accumulator:       e.accumulator,
		Pending:           e.pending,
		PendingSymbol:     e.pending.Symbol(),
		JustEvaluated:     e.justEvaluated,
		JustChoseOperator: e.justChoseOperator,
		Error:             e.display == ErrorDisplay,
	}
}

// Apply processes one key and returns the resulting display.
//
// While the error marker is shown only clear, a digit, or the decimal
// point are honored; the latter two start over from a cleared state.
func (e *Engine) Apply(k Key) string {
	if e.display == ErrorDisplay {
		switch {
		case k == KeyClear:
		case k.IsDigit() || k == KeyDecimal:
			e.Reset()
		default:
			return e.display
		}
	}

	switch {
	case k == KeyClear:
		e.Reset()
	case k == KeySignToggle:
		e.toggleSign()
	case k == KeyPercent:
		e.percent()
	case k == KeyEquals:
		e.evaluate()
		e.pending = OpNone
		e.justChoseOperator = false
	case k.IsOperator():
		e.chooseOperator(k.Operation())
	case k.IsDigit() || k == KeyDecimal:
		e.enter(k)
	}
	return e.display
}

// ApplyAll presses keys in order and returns the display after each one.
func (e *Engine) ApplyAll(keys ...Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.Apply(k))
	}
	return out
}

func (e *Engine) enter(k Key) {
	if e.justEvaluated || e.justChoseOperator || e.display == initialDisplay {
		e.display = ""
	}
	switch {
	case k != KeyDecimal:
		e.display += k.Label()
	case e.display == "":
		e.display = "0."
	case !hasDecimalPoint(e.display):
		e.display += "."
	}
	e.justEvaluated = false
	e.justChoseOperator = false
}

func (e *Engine) chooseOperator(op Operation) {
	if e.pending != OpNone {
		e.evaluate()
		if e.display == ErrorDisplay {
			e.pending = OpNone
			return
		}
	}
	v, ok := ParseNumber(e.display)
	if !ok {
		e.display = ErrorDisplay
		e.pending = OpNone
		e.justEvaluated = true
		return
	}
	e.pending = op
	e.accumulator = v
	e.justChoseOperator = true
}

func (e *Engine) evaluate() {
	defer func() { e.justEvaluated = true }()

	operand, ok := ParseNumber(e.display)
	if !ok {
		e.display = ErrorDisplay
		return
	}
	result := e.pending.Apply(e.accumulator, operand)
	if !isFinite(result) {
		e.display = ErrorDisplay
		return
	}
	e.display = FormatNumber(result)
	e.accumulator = result
}

func (e *Engine) percent() {
	v, ok := ParseNumber(e.display)
	result := v / 100
	if !ok || !isFinite(result) {
		e.display = ErrorDisplay
	} else {
		e.display = FormatNumber(result)
	}
	e.justEvaluated = true
}

func (e *Engine) toggleSign() {
	switch {
	case len(e.display) > 0 && e.display[0] == '-':
		e.display = e.display[1:]
	case e.display == initialDisplay:
	default:
		e.display = "-" + e.display
	}
}

func hasDecimalPoint(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'E' {
			return true
		}
	}
	return false
}

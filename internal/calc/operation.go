package calc

// Operation is the operator waiting for its right-hand operand.
type Operation int

const (
	OpNone Operation = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return "none"
	}
}

// Symbol returns the keypad caption of the operation, or "" for OpNone.
func (o Operation) Symbol() string {
	switch o {
	case OpAdd:
		return KeyAdd.Label()
	case OpSubtract:
		return KeySubtract.Label()
	case OpMultiply:
		return KeyMultiply.Label()
	case OpDivide:
		return KeyDivide.Label()
	default:
		return ""
	}
}

// Apply combines the accumulator a with operand b. OpNone passes b
// through. Division by zero follows IEEE 754 and yields ±Inf or NaN.
func (o Operation) Apply(a, b float64) float64 {
	switch o {
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	case OpMultiply:
		return a * b
	case OpDivide:
		return a / b
	default:
		return b
	}
}

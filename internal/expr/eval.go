package expr

import "math/bits"

// Resolver maps an identifier to its value. A nil Resolver treats every
// identifier as undefined.
type Resolver func(name string) (int64, error)

// Eval computes the value of n with 64-bit two's complement arithmetic.
// Overflow wraps silently. Only the selected branch of a conditional and the
// needed operands of && and || are evaluated.
func Eval(n Node, resolve Resolver) (int64, error) {
	switch n := n.(type) {
	case *NumberLit:
		return n.Value, nil
	case *Ref:
		if resolve == nil {
			return 0, evalErr(n.Offset, "undefined identifier %q", n.Name)
		}
		v, err := resolve(n.Name)
		if err != nil {
			return 0, &Error{Kind: EvalError, Pos: n.Offset, Index: -1, Msg: err.Error(), Err: err}
		}
		return v, nil
	case *Unary:
		x, err := Eval(n.X, resolve)
		if err != nil {
			return 0, err
		}
		return evalUnary(n, x)
	case *Binary:
		return evalBinary(n, resolve)
	case *Cond:
		c, err := Eval(n.Cond, resolve)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return Eval(n.Then, resolve)
		}
		return Eval(n.Else, resolve)
	}
	return 0, evalErr(0, "unknown node type %T", n)
}

// EvalString parses and evaluates src.
func EvalString(src string, resolve Resolver) (int64, error) {
	n, err := ParseString(src)
	if err != nil {
		return 0, err
	}
	return Eval(n, resolve)
}

// Log2Ceil returns floor(log2(x)) when x is a power of two and ceil(log2(x))
// otherwise. ok is false for x <= 0.
func Log2Ceil(x int64) (int64, bool) {
	if x <= 0 {
		return 0, false
	}
	width := int64(bits.Len64(uint64(x)))
	if x&(x-1) == 0 {
		return width - 1, true
	}
	return width, true
}

func evalUnary(n *Unary, x int64) (int64, error) {
	switch n.Op {
	case Log2:
		v, ok := Log2Ceil(x)
		if !ok {
			return 0, evalErr(n.Offset, "log2 of non-positive value %d", x)
		}
		return v, nil
	case BNot:
		return ^x, nil
	case LNot:
		return boolInt(x == 0), nil
	case UMinus:
		return -x, nil
	}
	return 0, evalErr(n.Offset, "unknown unary operator %s", n.Op)
}

func evalBinary(n *Binary, resolve Resolver) (int64, error) {
	x, err := Eval(n.X, resolve)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case LAnd:
		if x == 0 {
			return 0, nil
		}
		y, err := Eval(n.Y, resolve)
		if err != nil {
			return 0, err
		}
		return boolInt(y != 0), nil
	case LOr:
		if x != 0 {
			return 1, nil
		}
		y, err := Eval(n.Y, resolve)
		if err != nil {
			return 0, err
		}
		return boolInt(y != 0), nil
	}

	y, err := Eval(n.Y, resolve)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case Mul:
		return x * y, nil
	case Div:
		if y == 0 {
			return 0, evalErr(n.Offset, "division by zero")
		}
		return x / y, nil
	case Mod:
		if y == 0 {
			return 0, evalErr(n.Offset, "modulo by zero")
		}
		return x % y, nil
	case Add:
		return x + y, nil
	case Sub:
		return x - y, nil
	case Shl:
		if y < 0 {
			return 0, evalErr(n.Offset, "negative shift count %d", y)
		}
		return x << uint64(y), nil
	case Shr:
		if y < 0 {
			return 0, evalErr(n.Offset, "negative shift count %d", y)
		}
		return x >> uint64(y), nil
	case Lt:
		return boolInt(x < y), nil
	case Le:
		return boolInt(x <= y), nil
	case Gt:
		return boolInt(x > y), nil
	case Ge:
		return boolInt(x >= y), nil
	case Eq:
		return boolInt(x == y), nil
	case Neq:
		return boolInt(x != y), nil
	case BAnd:
		return x & y, nil
	case BXor:
		return x ^ y, nil
	case BOr:
		return x | y, nil
	}
	return 0, evalErr(n.Offset, "unknown binary operator %s", n.Op)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

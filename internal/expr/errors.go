package expr

import "fmt"

// ErrorKind classifies expression failures.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	EvalError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case EvalError:
		return "evaluation error"
	}
	return "error"
}

// Error is returned by every function in this package. Pos is a byte offset
// into the source; Index is the token index for syntax errors and -1
// otherwise.
type Error struct {
	Kind  ErrorKind
	Pos   int
	Index int
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func lexErr(pos int, format string, args ...any) *Error {
	return &Error{Kind: LexicalError, Pos: pos, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

func evalErr(pos int, format string, args ...any) *Error {
	return &Error{Kind: EvalError, Pos: pos, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

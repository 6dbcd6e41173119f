package expr

// Node is an expression tree node. The set of implementations is closed:
// *NumberLit, *Ref, *Unary, *Binary and *Cond.
type Node interface {
	// Pos is the byte offset of the node's defining token.
	Pos() int
	node()
}

// NumberLit is an integer literal.
type NumberLit struct {
	Value  int64
	Offset int
}

// Ref is a reference to a named value, resolved at evaluation time.
type Ref struct {
	Name   string
	Offset int
}

// Unary is a prefix operation: @, ~, ! or unary minus.
type Unary struct {
	Op     Kind
	X      Node
	Offset int
}

// Binary is an infix operation. Offset is the operator's position.
type Binary struct {
	Op     Kind
	X, Y   Node
	Offset int
}

// Cond is the conditional operator c ? a : b. Offset is the position of '?'.
type Cond struct {
	Cond, Then, Else Node
	Offset           int
}

func (n *NumberLit) Pos() int { return n.Offset }
func (n *Ref) Pos() int       { return n.Offset }
func (n *Unary) Pos() int     { return n.Offset }
func (n *Binary) Pos() int    { return n.Offset }
func (n *Cond) Pos() int      { return n.Offset }

func (*NumberLit) node() {}
func (*Ref) node()       {}
func (*Unary) node()     {}
func (*Binary) node()    {}
func (*Cond) node()      {}

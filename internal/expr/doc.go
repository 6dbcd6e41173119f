// Package expr implements the integer expression language used by config
// items, bundle member lengths, dimensions and defaults, and instance config
// overrides.
//
// The pipeline is Tokenize -> Parse -> Eval (or ExtractIdentifiers when only
// the dependencies of an expression matter). Precedence, highest first:
//
//	primary     number, identifier, ( expr )
//	unary       @ (log2)  ~  !  -        right associative
//	            *  /  %
//	            +  -
//	            <<  >>
//	            <  <=  >  >=
//	            ==  !=
//	            &
//	            ^
//	            |
//	            &&
//	            ||
//	conditional c ? a : b                right associative
//
// All arithmetic is 64-bit signed and wraps on overflow.
package expr

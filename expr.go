package kvlite

// Expr represents an access expression over the key column.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and
// enables exhaustive type switches in the SQL compiler.
//
// Two kinds of expression exist, and the distinction is load-bearing:
//
//   - Key is a literal. It matches at most one row, and a zero-row
//     result from a strict accessor is a KeyNotFoundError.
//   - Everything else is a set predicate. It matches zero or more rows,
//     and a zero-row result is an empty sequence, never an error.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Key is a literal single-key access expression.
//
// Used bare it addresses exactly one row. Nested inside And, Or or Not
// it degrades to a plain equality predicate and loses its single-key
// semantics, since the enclosing expression may match any number of
// rows.
type Key string

func (Key) exprNode() {}

// In matches every row whose key is a member of the set.
//
// An empty In matches nothing.
type In []string

func (In) exprNode() {}

// Op is a comparison operator for Cmp.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Cmp matches every row whose key compares against Value under Op.
// Comparison is lexicographic, matching the table's key ordering.
type Cmp struct {
	Op    Op
	Value string
}

func (Cmp) exprNode() {}

// Prefix matches every row whose key starts with the given string.
// An empty Prefix matches every row.
type Prefix string

func (Prefix) exprNode() {}

// And matches rows satisfying every member expression.
// An empty And matches every row (vacuous truth).
type And []Expr

func (And) exprNode() {}

// Or matches rows satisfying at least one member expression.
// An empty Or matches nothing.
type Or []Expr

func (Or) exprNode() {}

// Not matches rows that do not satisfy the inner expression.
type Not struct {
	Expr Expr
}

func (Not) exprNode() {}

package ltl

// An Op is the connective at the root of a formula tree.
type Op byte

const (
	// OpTrue is the constant ⊤.
	OpTrue = Op(iota)
	// OpFalse is the constant ⊥.
	OpFalse
	// OpAtom is a named propositional variable.
	OpAtom
	// OpNot is a negation.
	OpNot
	// OpNext is the temporal operator X: the subformula holds at the next instant.
	OpNext
	// OpAlways is the temporal operator G: the subformula holds at every instant from now on.
	OpAlways
	// OpEventually is the temporal operator F: the subformula holds at some instant from now on.
	OpEventually
	// OpAnd is a conjunction.
	OpAnd
	// OpOr is a disjunction.
	OpOr
	// OpUntil is the temporal operator U: the right subformula eventually
	// holds and the left one holds at every instant before that.
	OpUntil
	// OpImplies is an implication. Eliminated by Simplify.
	OpImplies
	// OpIff is a biconditional. Eliminated by Simplify.
	OpIff
)

// A Formula is an LTL formula tree.
// Formulas are immutable once built: constructors share subtrees freely.
type Formula struct {
	Op   Op
	Name string   // atom name, only set when Op is OpAtom
	L, R *Formula // subformulas; unary operators only use L
}

var (
	trueConst  = &Formula{Op: OpTrue}
	falseConst = &Formula{Op: OpFalse}
)

// True returns the constant ⊤.
func True() *Formula { return trueConst }

// False returns the constant ⊥.
func False() *Formula { return falseConst }

// Atom returns the propositional variable with the given name.
func Atom(name string) *Formula {
	return &Formula{Op: OpAtom, Name: name}
}

// Not returns the negation of f.
func Not(f *Formula) *Formula {
	return &Formula{Op: OpNot, L: f}
}

// Next returns the formula X f.
func Next(f *Formula) *Formula {
	return &Formula{Op: OpNext, L: f}
}

// Always returns the formula G f.
func Always(f *Formula) *Formula {
	return &Formula{Op: OpAlways, L: f}
}

// Eventually returns the formula F f.
func Eventually(f *Formula) *Formula {
	return &Formula{Op: OpEventually, L: f}
}

// And returns the conjunction of l and r.
func And(l, r *Formula) *Formula {
	return &Formula{Op: OpAnd, L: l, R: r}
}

// Or returns the disjunction of l and r.
func Or(l, r *Formula) *Formula {
	return &Formula{Op: OpOr, L: l, R: r}
}

// Until returns the formula l U r.
func Until(l, r *Formula) *Formula {
	return &Formula{Op: OpUntil, L: l, R: r}
}

// Implies returns the formula l -> r.
func Implies(l, r *Formula) *Formula {
	return &Formula{Op: OpImplies, L: l, R: r}
}

// Iff returns the formula l <-> r.
func Iff(l, r *Formula) *Formula {
	return &Formula{Op: OpIff, L: l, R: r}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b *Formula) bool {
	return Compare(a, b) == 0
}

package solver

import "github.com/go-air/gini"

// A frame is one node of the tableau search stack: the set of closure
// members asserted at one time step, or a branching decision inside it.
// Frames never move once pushed, so chain back-references stay valid for
// as long as the referenced ancestor is on the stack.
type frame struct {
	id            uint64 // time index in the candidate model
	formulas      *bitset
	toProcess     *bitset
	eventualities []eventuality
	chain         *frame // last STEP ancestor, nil at time 0
	kind          frameKind
	chosen        int        // β-formula being branched on, -1 when none
	solver        *gini.Gini // owned propositional solver, SAT frames only
	literals      []int      // closure indices exposed to the SAT solver
}

// newRootFrame builds the frame asserting only the start formula.
func newRootFrame(start, width, numEventualities int) *frame {
	f := &frame{
		formulas:      newBitset(width),
		toProcess:     newBitset(width),
		eventualities: make([]eventuality, numEventualities),
		chosen:        -1,
	}
	f.formulas.set(start)
	f.toProcess.setAll()
	for i := range f.eventualities {
		f.eventualities[i] = evNotRequested
	}
	return f
}

// childFrame copies the parent for a branching push: same time index,
// same chain anchor, own copies of the mutable state.
func childFrame(parent *frame) *frame {
	return &frame{
		id:            parent.id,
		formulas:      parent.formulas.clone(),
		toProcess:     parent.toProcess.clone(),
		eventualities: append([]eventuality(nil), parent.eventualities...),
		chain:         parent.chain,
		chosen:        -1,
	}
}

// stepFrame builds the frame for the next time step. Its formula set
// starts empty; the caller fills in the stripped tomorrow obligations.
func stepFrame(id uint64, width int, eventualities []eventuality, chain *frame) *frame {
	f := &frame{
		id:            id,
		formulas:      newBitset(width),
		toProcess:     newBitset(width),
		eventualities: append([]eventuality(nil), eventualities...),
		chain:         chain,
		chosen:        -1,
	}
	f.toProcess.setAll()
	return f
}

package solver

import "math"

// An eventuality tracks one pending obligation that some subformula must
// hold at a future instant. A slot starts unrequested, becomes
// not-satisfied the first time its generating formula is unfolded, and is
// stamped with the frame id of the latest instant at which the awaited
// subformula held.
type eventuality uint64

const (
	evNotRequested = eventuality(math.MaxUint64)
	evNotSatisfied = eventuality(math.MaxUint64 - 1)
)

func (e eventuality) isNotRequested() bool { return e == evNotRequested }

func (e eventuality) isSatisfied() bool { return e < evNotSatisfied }

func (e *eventuality) setNotSatisfied() { *e = evNotSatisfied }

func (e *eventuality) setSatisfied(id uint64) { *e = eventuality(id) }

// id returns the frame id of the latest satisfaction.
// Only meaningful when isSatisfied reports true.
func (e eventuality) id() uint64 { return uint64(e) }

package strategy

import (
	"github.com/rxtech-lab/mark-trading/internal/types"
)

// Ledger is the append-only trade history of one engine. Record is the
// only mutator and History hands out copies, so recorded operations can
// never be amended afterwards.
type Ledger struct {
	ops []types.Operation
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends an executed operation.
func (l *Ledger) Record(op types.Operation) {
	l.ops = append(l.ops, op)
}

// History returns the recorded operations in execution order.
func (l *Ledger) History() []types.Operation {
	out := make([]types.Operation, len(l.ops))
	copy(out, l.ops)
	return out
}

// Len returns the number of recorded operations.
func (l *Ledger) Len() int {
	return len(l.ops)
}

// Last returns the most recent operation, if any.
func (l *Ledger) Last() (types.Operation, bool) {
	if len(l.ops) == 0 {
		return types.Operation{}, false
	}
	return l.ops[len(l.ops)-1], true
}

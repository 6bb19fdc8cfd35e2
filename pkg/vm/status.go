package vm

// Status is the handler return convention: a non-negative integer is an
// instruction size or jump offset; ERROR triggers the unwind; a value
// in [Preempt, 0) signals preemption.
type Status int32

const (
	StatusOK       Status = 0
	StatusError    Status = -1
	StatusDeclined Status = -2
	StatusDone     Status = -3
	// Preempt is the start of the reserved negative preemption band.
	// No handler in this core returns a value in this band; the
	// dispatch loop's check for it is a documented no-op hook for an
	// embedder extension.
	Preempt Status = -1000
)

// IsPreempt reports whether a handler's raw return value falls in the
// reserved preemption band.
func IsPreempt(n int64) bool {
	return n < 0 && n >= int64(Preempt)
}

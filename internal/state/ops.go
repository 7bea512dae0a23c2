package state

// Ops tracks the operations in flight for one slot. Every operation has
// an id and a tree-wide sequence number taken when it was dispatched.
// Loading is derived from the pending set, and Error belongs to the most
// recently dispatched operation that has settled, so an older completion
// never overwrites a newer one's outcome.
type Ops struct {
	Pending     map[string]uint64 `json:"-" yaml:"-"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
	LastSettled uint64            `json:"-" yaml:"-"`
}

// Loading reports whether any operation is in flight.
func (o Ops) Loading() bool { return len(o.Pending) > 0 }

// Begin records id as pending.
func (o Ops) Begin(id string, seq uint64) Ops {
	pending := make(map[string]uint64, len(o.Pending)+1)
	for k, v := range o.Pending {
		pending[k] = v
	}
	pending[id] = seq
	o.Pending = pending
	return o
}

// Settle removes id from the pending set and, when it is the newest
// operation to settle so far, stores its outcome. An empty msg is success.
func (o Ops) Settle(id string, seq uint64, msg string) Ops {
	if _, ok := o.Pending[id]; ok {
		pending := make(map[string]uint64, len(o.Pending))
		for k, v := range o.Pending {
			if k != id {
				pending[k] = v
			}
		}
		o.Pending = pending
	}
	if seq >= o.LastSettled {
		o.Error = msg
		o.LastSettled = seq
	}
	return o
}

// ClearError drops the stored error without touching pending operations.
func (o Ops) ClearError() Ops {
	o.Error = ""
	return o
}

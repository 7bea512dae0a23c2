package state

import "financemonkey/fm-cli/internal/models"

// mark is the sequence of the last mutation applied to one record.
type mark struct {
	Seq     uint64
	Deleted bool
}

// Resource is the cached projection of one server collection. Values are
// immutable: every method returns a new Resource and never writes through
// a slice or map shared with the receiver.
type Resource[T models.Record] struct {
	Ops

	Items []T `json:"items" yaml:"items"`

	// Fetched is true once any fetch has been applied.
	Fetched bool `json:"fetched" yaml:"fetched"`
	// FromSnapshot is true while Items come from the offline snapshot.
	FromSnapshot bool `json:"fromSnapshot,omitempty" yaml:"from_snapshot,omitempty"`

	fetchSeq uint64
	marks    map[string]mark
}

// Find returns the record with the given key.
func (r Resource[T]) Find(id string) (T, bool) {
	for _, item := range r.Items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Begin marks an operation as pending.
func (r Resource[T]) Begin(id string, seq uint64) Resource[T] {
	r.Ops = r.Ops.Begin(id, seq)
	return r
}

// Settle ends an operation without touching the items.
func (r Resource[T]) Settle(id string, seq uint64, msg string) Resource[T] {
	r.Ops = r.Ops.Settle(id, seq, msg)
	return r
}

func (r Resource[T]) withMark(id string, m mark) Resource[T] {
	marks := make(map[string]mark, len(r.marks)+1)
	for k, v := range r.marks {
		marks[k] = v
	}
	marks[id] = m
	r.marks = marks
	return r
}

// newer reports whether a mutation with seq may still be applied to id.
func (r Resource[T]) newer(id string, seq uint64) bool {
	m, ok := r.marks[id]
	if ok && m.Seq > seq {
		return false
	}
	return seq >= r.fetchSeq
}

// Replace applies a fetch result dispatched at seq. The whole collection
// is replaced, except for records a later mutation has already touched,
// which keep their local state. It returns false when a fetch dispatched
// after this one was already applied.
func (r Resource[T]) Replace(items []T, seq uint64) (Resource[T], bool) {
	if seq < r.fetchSeq {
		return r, false
	}

	next := make([]T, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		id := item.Key()
		seen[id] = true
		if m, ok := r.marks[id]; ok && m.Seq > seq {
			if m.Deleted {
				continue
			}
			if local, found := r.Find(id); found {
				next = append(next, local)
				continue
			}
		}
		next = append(next, item)
	}
	for _, local := range r.Items {
		id := local.Key()
		if m, ok := r.marks[id]; ok && m.Seq > seq && !m.Deleted && !seen[id] {
			next = append(next, local)
		}
	}

	marks := make(map[string]mark, len(r.marks))
	for k, v := range r.marks {
		if v.Seq > seq {
			marks[k] = v
		}
	}

	r.Items = next
	r.marks = marks
	r.fetchSeq = seq
	r.Fetched = true
	r.FromSnapshot = false
	return r, true
}

// Append adds the server's canonical record created at seq. When a fetch
// or mutation applied after seq already holds the record, that version
// stays; a later delete also wins. A record with the same key is never
// added twice.
func (r Resource[T]) Append(item T, seq uint64) Resource[T] {
	id := item.Key()
	idx := -1
	for i, existing := range r.Items {
		if existing.Key() == id {
			idx = i
			break
		}
	}
	if idx >= 0 && !r.newer(id, seq) {
		return r
	}
	if m, ok := r.marks[id]; idx < 0 && ok && m.Deleted && m.Seq > seq {
		return r
	}

	next := make([]T, len(r.Items), len(r.Items)+1)
	copy(next, r.Items)
	if idx >= 0 {
		next[idx] = item
	} else {
		next = append(next, item)
	}
	r.Items = next
	return r.withMark(id, mark{Seq: seq})
}

// Put replaces the record with the same key. It returns false, leaving r
// unchanged, when there is no local match or a later mutation of the
// same record has already been applied.
func (r Resource[T]) Put(item T, seq uint64) (Resource[T], bool) {
	id := item.Key()
	if !r.newer(id, seq) {
		return r, false
	}
	idx := -1
	for i, existing := range r.Items {
		if existing.Key() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return r, false
	}

	next := make([]T, len(r.Items))
	copy(next, r.Items)
	next[idx] = item
	r.Items = next
	return r.withMark(id, mark{Seq: seq}), true
}

// Remove drops the record with the given key. It returns false when
// nothing matched.
func (r Resource[T]) Remove(id string, seq uint64) (Resource[T], bool) {
	next := make([]T, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Key() != id {
			next = append(next, item)
		}
	}
	removed := len(next) != len(r.Items)
	r.Items = next
	if m, ok := r.marks[id]; ok && m.Seq > seq {
		seq = m.Seq
	}
	return r.withMark(id, mark{Seq: seq, Deleted: true}), removed
}

// Seed installs items restored from the offline snapshot. It does nothing
// once a live fetch has been applied.
func (r Resource[T]) Seed(items []T) Resource[T] {
	if r.Fetched || items == nil {
		return r
	}
	r.Items = append([]T(nil), items...)
	r.FromSnapshot = true
	return r
}

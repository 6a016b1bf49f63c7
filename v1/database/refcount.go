package database

import "sync/atomic"

// RefCount is an atomic reference count. The zero value holds no
// references; Init sets the initial owner.
type RefCount struct {
	n atomic.Int32
}

// Init sets the count to one.
func (r *RefCount) Init() {
	r.n.Store(1)
}

// Retain adds a reference. It fails with ErrReleased once the count has
// dropped to zero.
func (r *RefCount) Retain() error {
	for {
		cur := r.n.Load()
		if cur <= 0 {
			return NewError(KindReleased, StateReleased, "cannot retain a released handle")
		}
		if r.n.CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// Release drops a reference and runs teardown when the last one goes.
// Releasing an already released handle fails with ErrReleased and never
// runs teardown twice.
func (r *RefCount) Release(teardown func() error) error {
	for {
		cur := r.n.Load()
		if cur <= 0 {
			return NewError(KindReleased, StateReleased, "handle has already been released")
		}
		if !r.n.CompareAndSwap(cur, cur-1) {
			continue
		}
		if cur == 1 && teardown != nil {
			return teardown()
		}
		return nil
	}
}

// Count returns the current number of references.
func (r *RefCount) Count() int32 {
	return r.n.Load()
}

// Live reports whether at least one reference is held.
func (r *RefCount) Live() bool {
	return r.n.Load() > 0
}

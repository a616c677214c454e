package field

// FrameQueue holds next-frame callbacks for a Host. Not safe for concurrent use.
type FrameQueue struct {
	next    FrameID
	pending []queuedFrame
	running []queuedFrame
}

type queuedFrame struct {
	id FrameID
	fn func()
}

// Request queues fn for the next Run.
func (q *FrameQueue) Request(fn func()) FrameID {
	q.next++
	q.pending = append(q.pending, queuedFrame{id: q.next, fn: fn})
	return q.next
}

// Cancel drops a queued callback. Unknown or already-run ids are ignored.
func (q *FrameQueue) Cancel(id FrameID) {
	for i, p := range q.pending {
		if p.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	for i := range q.running {
		if q.running[i].id == id {
			q.running[i].fn = nil
			return
		}
	}
}

// Run calls, in request order, every callback queued before Run started.
// Callbacks requested while running wait for the next Run. It returns the
// number of callbacks called.
func (q *FrameQueue) Run() int {
	q.running = q.pending
	q.pending = nil
	n := 0
	for i := range q.running {
		if fn := q.running[i].fn; fn != nil {
			fn()
			n++
		}
	}
	q.running = nil
	return n
}

// Len returns the number of queued callbacks.
func (q *FrameQueue) Len() int { return len(q.pending) }

// ResizeListeners is the set of callbacks registered through Host.OnResize.
type ResizeListeners struct {
	next int
	fns  []resizeListener
}

type resizeListener struct {
	id int
	fn func()
}

// Add registers fn and returns a function that removes it.
func (l *ResizeListeners) Add(fn func()) (remove func()) {
	l.next++
	id := l.next
	l.fns = append(l.fns, resizeListener{id: id, fn: fn})
	return func() {
		for i, r := range l.fns {
			if r.id == id {
				l.fns = append(l.fns[:i], l.fns[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every listener registered before it started, once. A listener
// removed by an earlier one in the same Notify is skipped.
func (l *ResizeListeners) Notify() {
	fns := make([]resizeListener, len(l.fns))
	copy(fns, l.fns)
	for _, r := range fns {
		if l.has(r.id) {
			r.fn()
		}
	}
}

func (l *ResizeListeners) has(id int) bool {
	for _, r := range l.fns {
		if r.id == id {
			return true
		}
	}
	return false
}

// Len returns the number of registered listeners.
func (l *ResizeListeners) Len() int { return len(l.fns) }

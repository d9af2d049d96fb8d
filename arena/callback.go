package arena

import (
	"slices"
	"sync/atomic"
)

// Event tells a Callback why it is being invoked.
type Event int

const (
	// EventFreeAll is delivered by FreeAll and LeaveScope.
	EventFreeAll Event = iota
	// EventDestroy is delivered by Destroy.
	EventDestroy
)

func (e Event) String() string {
	switch e {
	case EventFreeAll:
		return "free_all"
	case EventDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// Callback is invoked before an allocator reclaims its memory. Returning
// false on EventFreeAll deregisters the callback; after EventDestroy every
// callback is deregistered regardless of the result.
type Callback func(a *Allocator, ev Event) bool

type callbackRecord struct {
	fn Callback
	id uint32
}

// Ids are process-wide so an id never matches a callback on a different
// allocator by accident.
var lastCallbackID atomic.Uint32

// Register adds cb to the allocator and returns its id, which is never 0.
// Callbacks run newest first. The system allocator never fires callbacks;
// registering on it returns 0.
func (a *Allocator) Register(cb Callback) uint32 {
	if a == nil || cb == nil {
		return 0
	}
	a.checkAlive()

	id := lastCallbackID.Add(1)
	a.callbacks = append(a.callbacks, callbackRecord{fn: cb, id: id})

	if len(a.callbacks) > callbackWarnThreshold {
		a.warn.Do(func() {
			a.logger.Warn("callback registry is growing", "callbacks", len(a.callbacks))
		})
	}
	return id
}

// Unregister removes the callback with the given id. Unknown ids are ignored.
// It is safe to call from inside a running callback.
func (a *Allocator) Unregister(id uint32) {
	if a == nil || id == 0 || a.destroyed {
		return
	}
	for i := range a.callbacks {
		if a.callbacks[i].id != id {
			continue
		}
		if a.dispatching {
			a.callbacks[i].fn = nil
		} else {
			a.callbacks = slices.Delete(a.callbacks, i, i+1)
		}
		return
	}
}

// dispatch runs the callbacks registered before it started, newest first,
// and returns how many fired.
func (a *Allocator) dispatch(ev Event) int {
	a.dispatching = true
	fired := 0
	for i := len(a.callbacks) - 1; i >= 0; i-- {
		fn := a.callbacks[i].fn
		if fn == nil {
			continue
		}
		fired++
		keep := fn(a, ev)
		if !keep || ev == EventDestroy {
			a.callbacks[i].fn = nil
		}
	}
	a.dispatching = false

	a.callbacks = slices.DeleteFunc(a.callbacks, func(r callbackRecord) bool {
		return r.fn == nil
	})
	return fired
}

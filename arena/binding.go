package arena

// Binding ties a container's lifetime to its allocators.
//
// A single-scope binding (Bind) only remembers the allocator generation, so
// the container panics with ErrStale once its allocator freed everything.
//
// An autoreset binding (BindAutoreset) keeps the container header alive in
// meta while its contents live in data. Two callbacks keep them consistent:
// every FreeAll on data calls reset and keeps the container usable; Destroy
// on data, or any FreeAll or Destroy on meta, kills the container and
// unregisters the callback on the other side.
type Binding struct {
	meta, data *Allocator
	gen        uint32
	autoreset  bool
	dead       bool
	metaID     uint32
	dataID     uint32
	reset      func()
}

// Bind returns a single-scope binding to a.
func Bind(a *Allocator) *Binding {
	return &Binding{meta: a, data: a, gen: a.Generation()}
}

// BindAutoreset returns an autoreset binding. reset must drop every
// reference into data.
func BindAutoreset(meta, data *Allocator, reset func()) *Binding {
	b := &Binding{
		meta:      meta,
		data:      data,
		gen:       meta.Generation(),
		autoreset: true,
		reset:     reset,
	}
	b.metaID = meta.Register(b.onMeta)
	b.dataID = data.Register(b.onData)
	return b
}

func (b *Binding) onData(_ *Allocator, ev Event) bool {
	b.reset()
	if ev == EventDestroy {
		b.meta.Unregister(b.metaID)
		b.dead = true
	}
	return true
}

func (b *Binding) onMeta(*Allocator, Event) bool {
	b.data.Unregister(b.dataID)
	b.reset()
	b.dead = true
	return false
}

// Check panics with ErrDestroyed if the container was killed and with
// ErrStale if its header allocator freed everything since binding.
func (b *Binding) Check() {
	if b.dead {
		panic(ErrDestroyed)
	}
	if b.meta.Generation() != b.gen {
		panic(ErrStale)
	}
}

// Meta returns the allocator holding the container header.
func (b *Binding) Meta() *Allocator { return b.meta }

// Data returns the allocator holding the container contents.
func (b *Binding) Data() *Allocator { return b.data }

// Autoreset reports whether the binding was made with BindAutoreset.
func (b *Binding) Autoreset() bool { return b.autoreset }

// Release unregisters the callbacks and marks the container dead.
func (b *Binding) Release() {
	if b.autoreset {
		b.meta.Unregister(b.metaID)
		b.data.Unregister(b.dataID)
	}
	b.dead = true
}

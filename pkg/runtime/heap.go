package runtime

import "aps/interpreter-go/pkg/ast"

// DefaultGCThreshold is the number of allocations between automatic
// collections.
const DefaultGCThreshold = 256

type gcHeader struct {
	marked bool
}

func (h *gcHeader) header() *gcHeader { return h }

// heapObject is implemented by everything the collector manages.
type heapObject interface {
	header() *gcHeader
	trace(visit func(heapObject))
	release()
}

func asObject(v Value) heapObject {
	switch obj := v.(type) {
	case *ListValue:
		return obj
	case *ProcedureValue:
		return obj
	}
	return nil
}

// Stats summarises collector activity over the lifetime of a heap.
type Stats struct {
	Cycles      int
	Allocations int
	Reclaimed   int
	Live        int
}

// CycleStats describes a single collection.
type CycleStats struct {
	Marked    int
	Reclaimed int
	Live      int
}

// Heap owns lists, procedures and scopes and reclaims them with a tracing
// mark-and-sweep collector. Roots are the global scope, the stack of active
// call scopes and the pin stack of temporaries.
//
// Collection only happens when the evaluator calls SafePoint, which it does
// between statements; anything held only in Go locals across a statement
// boundary must be pinned.
type Heap struct {
	objects   []heapObject
	global    *Environment
	frames    []*Environment
	pins      []Value
	threshold int
	pending   int
	stats     Stats
}

// NewHeap returns an empty heap. A threshold of 0 disables automatic
// collection; negative values select DefaultGCThreshold.
func NewHeap(threshold int) *Heap {
	if threshold < 0 {
		threshold = DefaultGCThreshold
	}
	return &Heap{threshold: threshold}
}

func (h *Heap) register(obj heapObject) {
	h.objects = append(h.objects, obj)
	h.pending++
	h.stats.Allocations++
}

// NewList allocates a list holding elems (the slice is retained).
func (h *Heap) NewList(elems []Value) *ListValue {
	if elems == nil {
		elems = make([]Value, 0)
	}
	list := &ListValue{Elements: elems}
	h.register(list)
	return list
}

// NewProcedure allocates a procedure closed over closure.
func (h *Heap) NewProcedure(decl *ast.ProcedureDefinition, closure *Environment) *ProcedureValue {
	proc := &ProcedureValue{Declaration: decl, Closure: closure}
	h.register(proc)
	return proc
}

// NewEnvironment allocates a scope chained to parent.
func (h *Heap) NewEnvironment(parent *Environment) *Environment {
	env := NewEnvironment(parent)
	h.register(env)
	return env
}

// SetGlobal installs the global scope as a permanent root.
func (h *Heap) SetGlobal(env *Environment) {
	h.global = env
}

// PushFrame roots the scope of a procedure call until PopFrame.
func (h *Heap) PushFrame(env *Environment) {
	h.frames = append(h.frames, env)
}

func (h *Heap) PopFrame() {
	if len(h.frames) == 0 {
		return
	}
	h.frames[len(h.frames)-1] = nil
	h.frames = h.frames[:len(h.frames)-1]
}

// Depth returns the number of active call frames.
func (h *Heap) Depth() int {
	return len(h.frames)
}

// Pin roots v until the pin stack is released below its position.
func (h *Heap) Pin(v Value) {
	h.pins = append(h.pins, v)
}

// PinMark returns the current pin stack height for a later Release.
func (h *Heap) PinMark() int {
	return len(h.pins)
}

// Release drops every pin above mark.
func (h *Heap) Release(mark int) {
	if mark < 0 || mark > len(h.pins) {
		return
	}
	clear(h.pins[mark:])
	h.pins = h.pins[:mark]
}

// SafePoint collects when enough allocations happened since the last cycle.
func (h *Heap) SafePoint() (CycleStats, bool) {
	if h.threshold == 0 || h.pending < h.threshold {
		return CycleStats{}, false
	}
	return h.Collect(), true
}

// Collect runs a full mark-and-sweep cycle.
func (h *Heap) Collect() CycleStats {
	marked := h.mark()
	reclaimed := h.sweep()
	for _, obj := range marked {
		obj.header().marked = false
	}
	h.pending = 0
	h.stats.Cycles++
	h.stats.Reclaimed += reclaimed
	return CycleStats{Marked: len(marked), Reclaimed: reclaimed, Live: len(h.objects)}
}

// mark flags everything reachable from the roots and returns it, including
// untracked scopes, so the flags can be reset after sweeping.
func (h *Heap) mark() []heapObject {
	var (
		work   []heapObject
		marked []heapObject
	)
	push := func(obj heapObject) {
		if obj == nil {
			return
		}
		hdr := obj.header()
		if hdr.marked {
			return
		}
		hdr.marked = true
		marked = append(marked, obj)
		work = append(work, obj)
	}

	if h.global != nil {
		push(h.global)
	}
	for _, frame := range h.frames {
		push(frame)
	}
	for _, pinned := range h.pins {
		if obj := asObject(pinned); obj != nil {
			push(obj)
		}
	}

	for len(work) > 0 {
		obj := work[len(work)-1]
		work = work[:len(work)-1]
		obj.trace(push)
	}
	return marked
}

func (h *Heap) sweep() int {
	live := h.objects[:0]
	reclaimed := 0
	for _, obj := range h.objects {
		hdr := obj.header()
		if hdr.marked {
			live = append(live, obj)
			continue
		}
		obj.release()
		reclaimed++
	}
	clear(h.objects[len(live):])
	h.objects = live
	return reclaimed
}

// Live returns the number of objects currently registered.
func (h *Heap) Live() int {
	return len(h.objects)
}

// Stats returns cumulative collector statistics.
func (h *Heap) Stats() Stats {
	out := h.stats
	out.Live = len(h.objects)
	return out
}

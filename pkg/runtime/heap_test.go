package runtime

import (
	"testing"

	"aps/interpreter-go/pkg/ast"
)

func TestCollectKeepsReachableObjects(t *testing.T) {
	heap := NewHeap(0)
	global := heap.NewEnvironment(nil)
	heap.SetGlobal(global)

	kept := heap.NewList(numbers(1, 2))
	global.Define("kept", kept)
	heap.NewList(numbers(3))

	stats := heap.Collect()
	if stats.Reclaimed != 1 {
		t.Fatalf("expected one reclaimed list, got %+v", stats)
	}
	if stats.Live != 2 || heap.Live() != 2 {
		t.Fatalf("expected global scope and kept list to survive, got %+v", stats)
	}
	if Format(kept) != "[1, 2]" {
		t.Fatalf("reachable list was damaged: %s", Format(kept))
	}
}

func TestCollectReclaimsCycles(t *testing.T) {
	heap := NewHeap(0)
	heap.SetGlobal(heap.NewEnvironment(nil))

	a := heap.NewList(nil)
	b := heap.NewList([]Value{a})
	a.Elements = append(a.Elements, b)

	stats := heap.Collect()
	if stats.Reclaimed != 2 {
		t.Fatalf("expected cyclic pair to be reclaimed, got %+v", stats)
	}
	if a.Elements != nil || b.Elements != nil {
		t.Fatalf("swept lists should drop their references")
	}
}

func TestCollectTracesClosuresAndFrames(t *testing.T) {
	heap := NewHeap(0)
	global := heap.NewEnvironment(nil)
	heap.SetGlobal(global)

	captured := heap.NewEnvironment(global)
	captured.Define("secret", heap.NewList(numbers(42)))
	proc := heap.NewProcedure(ast.Proc("p", nil), captured)
	global.Define("p", proc)

	frame := heap.NewEnvironment(global)
	frame.Define("tmp", heap.NewList(nil))
	heap.PushFrame(frame)
	if heap.Depth() != 1 {
		t.Fatalf("Depth = %d, want 1", heap.Depth())
	}

	if stats := heap.Collect(); stats.Reclaimed != 0 {
		t.Fatalf("nothing should be reclaimed while rooted, got %+v", stats)
	}

	heap.PopFrame()
	if heap.Depth() != 0 {
		t.Fatalf("Depth = %d after pop, want 0", heap.Depth())
	}
	if stats := heap.Collect(); stats.Reclaimed != 2 {
		t.Fatalf("popped frame and its list should be reclaimed, got %+v", stats)
	}
	if v, ok := captured.Lookup("secret"); !ok || Format(v) != "[42]" {
		t.Fatalf("closure scope lost its binding")
	}
}

func TestPinsRootTemporaries(t *testing.T) {
	heap := NewHeap(0)
	heap.SetGlobal(heap.NewEnvironment(nil))

	mark := heap.PinMark()
	temp := heap.NewList(numbers(1))
	heap.Pin(temp)
	heap.Pin(NumberValue{Val: 3})
	if stats := heap.Collect(); stats.Reclaimed != 0 {
		t.Fatalf("pinned list was reclaimed: %+v", stats)
	}
	heap.Release(mark)
	if heap.PinMark() != mark {
		t.Fatalf("release did not restore the pin stack")
	}
	if stats := heap.Collect(); stats.Reclaimed != 1 {
		t.Fatalf("released list should be reclaimed, got %+v", stats)
	}
}

func TestSafePointHonoursThreshold(t *testing.T) {
	heap := NewHeap(3)
	heap.SetGlobal(heap.NewEnvironment(nil))
	heap.NewList(nil)
	if _, ran := heap.SafePoint(); ran {
		t.Fatalf("collected before threshold")
	}
	heap.NewList(nil)
	stats, ran := heap.SafePoint()
	if !ran || stats.Reclaimed != 2 {
		t.Fatalf("expected collection at threshold, got %+v (ran=%v)", stats, ran)
	}
	if _, ran := heap.SafePoint(); ran {
		t.Fatalf("allocation counter should reset after a cycle")
	}

	disabled := NewHeap(0)
	for i := 0; i < 1000; i++ {
		disabled.NewList(nil)
	}
	if _, ran := disabled.SafePoint(); ran {
		t.Fatalf("threshold 0 must disable automatic collection")
	}
}

func TestUntrackedGlobalIsRetracedEveryCycle(t *testing.T) {
	heap := NewHeap(0)
	global := NewEnvironment(nil)
	heap.SetGlobal(global)
	global.Define("x", heap.NewList(nil))
	for i := 0; i < 3; i++ {
		if stats := heap.Collect(); stats.Reclaimed != 0 {
			t.Fatalf("cycle %d reclaimed a rooted list: %+v", i, stats)
		}
	}
}

func TestLiveHeapStaysBoundedForDroppedCycles(t *testing.T) {
	heap := NewHeap(16)
	global := heap.NewEnvironment(nil)
	heap.SetGlobal(global)

	peak := 0
	for i := 0; i < 2000; i++ {
		list := heap.NewList(nil)
		list.Elements = append(list.Elements, list)
		global.Define("L", list)
		heap.SafePoint()
		if heap.Live() > peak {
			peak = heap.Live()
		}
	}
	if peak > 32 {
		t.Fatalf("live heap grew to %d objects", peak)
	}
	stats := heap.Stats()
	if stats.Allocations != 2001 || stats.Cycles == 0 || stats.Reclaimed == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

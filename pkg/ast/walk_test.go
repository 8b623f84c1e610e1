package ast

import "testing"

func TestInspectVisitsEveryNode(t *testing.T) {
	prog := Prog(
		Proc("add", []string{"a", "b"}, Ret(Bin(OpAdd, ID("a"), ID("b")))),
		If(Bool(true), Blk(Call("DISPLAY", Str("yes"))), nil),
		Each("x", List(Num(1), Num(2)), Assign(Index(ID("L"), Num(1)), ID("x"))),
	)
	counts := map[NodeType]int{}
	Inspect(prog, func(n Node) bool {
		counts[n.NodeType()]++
		return true
	})
	if counts[NodeIdentifier] != 9 {
		t.Fatalf("expected 9 identifiers, got %d (%v)", counts[NodeIdentifier], counts)
	}
	if counts[NodeBlock] != 3 || counts[NodeNumberLiteral] != 3 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestInspectCanPrune(t *testing.T) {
	prog := Prog(Proc("p", nil, Call("DISPLAY", Num(1))))
	visited := 0
	Inspect(prog, func(n Node) bool {
		visited++
		return n.NodeType() != NodeProcedureDefinition
	})
	if visited != 2 {
		t.Fatalf("expected program and procedure only, visited %d", visited)
	}
}

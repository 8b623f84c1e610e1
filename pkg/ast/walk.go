package ast

// Inspect traverses the tree rooted at node in depth-first order, calling fn
// for each node. Children are skipped when fn returns false.
func Inspect(node Node, fn func(Node) bool) {
	if isNil(node) || !fn(node) {
		return
	}
	for _, child := range children(node) {
		Inspect(child, fn)
	}
}

func children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if !isNil(n) {
				out = append(out, n)
			}
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Body {
			add(stmt)
		}
	case *Block:
		for _, stmt := range n.Body {
			add(stmt)
		}
	case *ListLiteral:
		for _, el := range n.Elements {
			add(el)
		}
	case *IndexExpression:
		add(n.Object, n.Index)
	case *CallExpression:
		add(n.Callee)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *BinaryExpression:
		add(n.Left, n.Right)
	case *UnaryExpression:
		add(n.Operand)
	case *Assignment:
		add(n.Target, n.Value)
	case *IfStatement:
		add(n.Condition)
		if n.Then != nil {
			add(n.Then)
		}
		if n.Else != nil {
			add(n.Else)
		}
	case *RepeatTimes:
		add(n.Count)
		if n.Body != nil {
			add(n.Body)
		}
	case *RepeatUntil:
		add(n.Condition)
		if n.Body != nil {
			add(n.Body)
		}
	case *ForEach:
		if n.Variable != nil {
			add(n.Variable)
		}
		add(n.List)
		if n.Body != nil {
			add(n.Body)
		}
	case *ProcedureDefinition:
		if n.ID != nil {
			add(n.ID)
		}
		for _, param := range n.Params {
			add(param)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *ReturnStatement:
		add(n.Argument)
	}
	return out
}

// isNil guards against interfaces holding a nil pointer as well as nil
// interfaces.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *Block:
		return n == nil
	case *Identifier:
		return n == nil
	}
	return false
}

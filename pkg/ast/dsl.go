package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func List(elements ...Expression) *ListLiteral {
	return NewListLiteral(orEmpty(elements))
}

// Expression helpers.

func Index(object Expression, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func Call(callee string, args ...Expression) *CallExpression {
	return NewCallExpression(ID(callee), orEmpty(args))
}

func CallExpr(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, orEmpty(args))
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

// Statement helpers.

func Blk(body ...Statement) *Block {
	return NewBlock(orEmpty(body))
}

func Assign(target AssignmentTarget, value Expression) *Assignment {
	return NewAssignment(target, value)
}

func If(cond Expression, then *Block, elseBody *Block) *IfStatement {
	return NewIfStatement(cond, then, elseBody)
}

func Times(count Expression, body ...Statement) *RepeatTimes {
	return NewRepeatTimes(count, Blk(body...))
}

func Until(cond Expression, body ...Statement) *RepeatUntil {
	return NewRepeatUntil(cond, Blk(body...))
}

func Each(variable string, list Expression, body ...Statement) *ForEach {
	return NewForEach(ID(variable), list, Blk(body...))
}

func Proc(name string, params []string, body ...Statement) *ProcedureDefinition {
	ids := make([]*Identifier, 0, len(params))
	for _, p := range params {
		ids = append(ids, ID(p))
	}
	return NewProcedureDefinition(ID(name), ids, Blk(body...))
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func Prog(body ...Statement) *Program {
	return NewProgram(orEmpty(body))
}

// orEmpty keeps helper-built trees identical to parsed ones, which never hold
// nil slices.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

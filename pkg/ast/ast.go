package ast

type NodeType string

const (
	NodeIdentifier          NodeType = "Identifier"
	NodeNumberLiteral       NodeType = "NumberLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeListLiteral         NodeType = "ListLiteral"
	NodeIndexExpression     NodeType = "IndexExpression"
	NodeCallExpression      NodeType = "CallExpression"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeBlock               NodeType = "Block"
	NodeAssignment          NodeType = "Assignment"
	NodeIfStatement         NodeType = "IfStatement"
	NodeRepeatTimes         NodeType = "RepeatTimes"
	NodeRepeatUntil         NodeType = "RepeatUntil"
	NodeForEach             NodeType = "ForEach"
	NodeProcedureDefinition NodeType = "ProcedureDefinition"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeProgram             NodeType = "Program"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// AssignmentTarget is implemented by expressions that may appear on the left of `<-`.
type AssignmentTarget interface {
	Expression
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type ListLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	return &ListLiteral{nodeImpl: newNodeImpl(NodeListLiteral), Elements: elements}
}

// Compound expressions

type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object Expression, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

// Operators as written in source; keyword operators are normalised to upper case.
const (
	OpAdd          = "+"
	OpSub          = "-"
	OpMul          = "*"
	OpDiv          = "/"
	OpMod          = "MOD"
	OpEqual        = "="
	OpNotEqual     = "!="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpAnd          = "AND"
	OpOr           = "OR"
	OpNot          = "NOT"
)

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

// Statements

type Block struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: body}
}

type Assignment struct {
	nodeImpl
	statementMarker

	Target AssignmentTarget `json:"target"`
	Value  Expression       `json:"value"`
}

func NewAssignment(target AssignmentTarget, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

// IfStatement models IF/ELSE; an ELSE IF chain nests another IfStatement as the
// sole statement of Else.
type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Then      *Block     `json:"then"`
	Else      *Block     `json:"else,omitempty"`
}

func NewIfStatement(cond Expression, then *Block, elseBody *Block) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then, Else: elseBody}
}

type RepeatTimes struct {
	nodeImpl
	statementMarker

	Count Expression `json:"count"`
	Body  *Block     `json:"body"`
}

func NewRepeatTimes(count Expression, body *Block) *RepeatTimes {
	return &RepeatTimes{nodeImpl: newNodeImpl(NodeRepeatTimes), Count: count, Body: body}
}

type RepeatUntil struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      *Block     `json:"body"`
}

func NewRepeatUntil(cond Expression, body *Block) *RepeatUntil {
	return &RepeatUntil{nodeImpl: newNodeImpl(NodeRepeatUntil), Condition: cond, Body: body}
}

type ForEach struct {
	nodeImpl
	statementMarker

	Variable *Identifier `json:"variable"`
	List     Expression  `json:"list"`
	Body     *Block      `json:"body"`
}

func NewForEach(variable *Identifier, list Expression, body *Block) *ForEach {
	return &ForEach{nodeImpl: newNodeImpl(NodeForEach), Variable: variable, List: list, Body: body}
}

type ProcedureDefinition struct {
	nodeImpl
	statementMarker

	ID     *Identifier   `json:"id"`
	Params []*Identifier `json:"params"`
	Body   *Block        `json:"body"`
}

func NewProcedureDefinition(id *Identifier, params []*Identifier, body *Block) *ProcedureDefinition {
	return &ProcedureDefinition{nodeImpl: newNodeImpl(NodeProcedureDefinition), ID: id, Params: params, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

// Program is the root of a parsed source file.
type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

// Package query provides the boolean expression trees that drive table
// scans: constants, attribute references, comparisons and connectives,
// evaluated against one (record, schema) pair at a time.
package query

import (
	"fmt"

	"github.com/savrasov/HeapDB/src/storage"
	"github.com/savrasov/HeapDB/src/storage/record"
)

// Expr is one node of an expression tree. Every Expr satisfies
// record.Condition, so any subtree can serve as a scan predicate.
type Expr interface {
	record.Condition
}

// Const evaluates to a fixed value.
type Const struct {
	Val *storage.Value
}

func NewConst(val *storage.Value) *Const {
	return &Const{Val: val}
}

// True returns a predicate matching every record.
func True() *Const {
	return NewConst(storage.NewBoolValue(true))
}

func (c *Const) Eval(_ *storage.Record, _ *storage.Schema) (*storage.Value, error) {
	if c.Val == nil {
		return nil, fmt.Errorf("%w: constant without value", storage.ErrInvalidParameter)
	}

	v := *c.Val

	return &v, nil
}

// AttrRef evaluates to the record's attribute at a fixed position.
type AttrRef struct {
	AttrNum int
}

func NewAttrRef(attrNum int) *AttrRef {
	return &AttrRef{AttrNum: attrNum}
}

func (a *AttrRef) Eval(rec *storage.Record, schema *storage.Schema) (*storage.Value, error) {
	return record.GetAttr(rec, schema, a.AttrNum)
}

// CmpOp enumerates the comparison operators.
type CmpOp int

const (
	CmpEQ CmpOp = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

func (op CmpOp) String() string {
	switch op {
	case CmpEQ:
		return "="
	case CmpNE:
		return "!="
	case CmpLT:
		return "<"
	case CmpLE:
		return "<="
	case CmpGT:
		return ">"
	case CmpGE:
		return ">="
	}

	return fmt.Sprintf("CmpOp(%d)", int(op))
}

// Comparison evaluates both operands and orders them. Operands of different
// types fail with ErrTypeMismatch.
type Comparison struct {
	Op          CmpOp
	Left, Right Expr
}

func NewComparison(op CmpOp, left, right Expr) *Comparison {
	return &Comparison{Op: op, Left: left, Right: right}
}

func (c *Comparison) Eval(rec *storage.Record, schema *storage.Schema) (*storage.Value, error) {
	lv, err := c.Left.Eval(rec, schema)
	if err != nil {
		return nil, err
	}

	rv, err := c.Right.Eval(rec, schema)
	if err != nil {
		return nil, err
	}

	order, err := lv.Compare(rv)
	if err != nil {
		return nil, err
	}

	if lv.Type == storage.TypeBool && c.Op != CmpEQ && c.Op != CmpNE {
		return nil, fmt.Errorf("%w: %s on booleans", storage.ErrTypeMismatch, c.Op)
	}

	var res bool
	switch c.Op {
	case CmpEQ:
		res = order == 0
	case CmpNE:
		res = order != 0
	case CmpLT:
		res = order < 0
	case CmpLE:
		res = order <= 0
	case CmpGT:
		res = order > 0
	case CmpGE:
		res = order >= 0
	default:
		return nil, fmt.Errorf("%w: comparison operator %d", storage.ErrInvalidParameter, int(c.Op))
	}

	return storage.NewBoolValue(res), nil
}

// BoolOp enumerates the connectives.
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
	BoolNot
)

// BoolExpr combines boolean subtrees. Not ignores its right operand.
type BoolExpr struct {
	Op          BoolOp
	Left, Right Expr
}

func And(left, right Expr) *BoolExpr {
	return &BoolExpr{Op: BoolAnd, Left: left, Right: right}
}

func Or(left, right Expr) *BoolExpr {
	return &BoolExpr{Op: BoolOr, Left: left, Right: right}
}

func Not(operand Expr) *BoolExpr {
	return &BoolExpr{Op: BoolNot, Left: operand}
}

func (b *BoolExpr) operand(e Expr, rec *storage.Record, schema *storage.Schema) (bool, error) {
	v, err := e.Eval(rec, schema)
	if err != nil {
		return false, err
	}
	if v.Type != storage.TypeBool {
		return false, fmt.Errorf("%w: connective over %s", storage.ErrTypeMismatch, v.Type)
	}

	return v.Bool, nil
}

func (b *BoolExpr) Eval(rec *storage.Record, schema *storage.Schema) (*storage.Value, error) {
	left, err := b.operand(b.Left, rec, schema)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case BoolNot:
		return storage.NewBoolValue(!left), nil
	case BoolAnd:
		if !left {
			return storage.NewBoolValue(false), nil
		}
	case BoolOr:
		if left {
			return storage.NewBoolValue(true), nil
		}
	default:
		return nil, fmt.Errorf("%w: boolean operator %d", storage.ErrInvalidParameter, int(b.Op))
	}

	right, err := b.operand(b.Right, rec, schema)
	if err != nil {
		return nil, err
	}

	return storage.NewBoolValue(right), nil
}

// Convenience constructors for the common attr-vs-constant predicates.

func AttrEquals(attrNum int, val *storage.Value) *Comparison {
	return NewComparison(CmpEQ, NewAttrRef(attrNum), NewConst(val))
}

func AttrGreaterThan(attrNum int, val *storage.Value) *Comparison {
	return NewComparison(CmpGT, NewAttrRef(attrNum), NewConst(val))
}

func AttrLessThan(attrNum int, val *storage.Value) *Comparison {
	return NewComparison(CmpLT, NewAttrRef(attrNum), NewConst(val))
}

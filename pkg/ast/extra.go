package ast

// This file defines the packed-struct layouts stored in Tree.Extra for
// tags whose payload doesn't fit in a bare Data{LHS,RHS} pair (spec.md §3
// "Extra arena" table). Each type's field order is its word order; the
// AddX helper appends the words via t.AddExtra, GetX reads them back
// given the starting index recorded in a node's Data. Types are named
// ExtraX rather than X because X is already a Tag constant (node.go).

// OptIndex is an Index that may be NoneNode; stored as a plain uint32 in
// the extra arena (NoneNode's all-ones pattern round-trips through
// uint32/Index unchanged).
type OptIndex = Index

// SubRange is a (start,end) pair of extra-arena offsets denoting a slice
// of node indices.
type SubRange struct {
	Start uint32
	End   uint32
}

type ExtraIf struct {
	ThenExpr Index
	ElseExpr OptIndex
}

func (t *Tree) AddIf(v ExtraIf) uint32 {
	return t.AddExtra(uint32(v.ThenExpr), uint32(v.ElseExpr))
}
func (t *Tree) GetIf(i uint32) ExtraIf {
	return ExtraIf{Index(t.Extra[i]), Index(t.Extra[i+1])}
}

type ExtraWhile struct {
	ContExpr OptIndex
	ThenExpr Index
	ElseExpr OptIndex
}

func (t *Tree) AddWhile(v ExtraWhile) uint32 {
	return t.AddExtra(uint32(v.ContExpr), uint32(v.ThenExpr), uint32(v.ElseExpr))
}
func (t *Tree) GetWhile(i uint32) ExtraWhile {
	return ExtraWhile{Index(t.Extra[i]), Index(t.Extra[i+1]), Index(t.Extra[i+2])}
}

type ExtraWhileCont struct {
	ContExpr Index
	ThenExpr Index
}

func (t *Tree) AddWhileCont(v ExtraWhileCont) uint32 {
	return t.AddExtra(uint32(v.ContExpr), uint32(v.ThenExpr))
}
func (t *Tree) GetWhileCont(i uint32) ExtraWhileCont {
	return ExtraWhileCont{Index(t.Extra[i]), Index(t.Extra[i+1])}
}

type ExtraFnProtoOne struct {
	Param     OptIndex
	AlignExpr OptIndex
	Addrspace OptIndex
	Section   OptIndex
	Callconv  OptIndex
}

func (t *Tree) AddFnProtoOne(v ExtraFnProtoOne) uint32 {
	return t.AddExtra(uint32(v.Param), uint32(v.AlignExpr), uint32(v.Addrspace), uint32(v.Section), uint32(v.Callconv))
}
func (t *Tree) GetFnProtoOne(i uint32) ExtraFnProtoOne {
	return ExtraFnProtoOne{Index(t.Extra[i]), Index(t.Extra[i+1]), Index(t.Extra[i+2]), Index(t.Extra[i+3]), Index(t.Extra[i+4])}
}

type ExtraFnProto struct {
	ParamsStart uint32
	ParamsEnd   uint32
	Align       OptIndex
	Addrspace   OptIndex
	Section     OptIndex
	Callconv    OptIndex
}

func (t *Tree) AddFnProto(v ExtraFnProto) uint32 {
	return t.AddExtra(v.ParamsStart, v.ParamsEnd, uint32(v.Align), uint32(v.Addrspace), uint32(v.Section), uint32(v.Callconv))
}
func (t *Tree) GetFnProto(i uint32) ExtraFnProto {
	e := t.Extra
	return ExtraFnProto{e[i], e[i+1], Index(e[i+2]), Index(e[i+3]), Index(e[i+4]), Index(e[i+5])}
}
func (t *Tree) FnProtoParams(v ExtraFnProto) []Index {
	return t.ExtraRangeNodes(SubRange{Start: v.ParamsStart, End: v.ParamsEnd})
}

type ExtraGlobalVarDecl struct {
	Type      OptIndex
	Align     OptIndex
	Addrspace OptIndex
	Section   OptIndex
}

func (t *Tree) AddGlobalVarDecl(v ExtraGlobalVarDecl) uint32 {
	return t.AddExtra(uint32(v.Type), uint32(v.Align), uint32(v.Addrspace), uint32(v.Section))
}
func (t *Tree) GetGlobalVarDecl(i uint32) ExtraGlobalVarDecl {
	e := t.Extra
	return ExtraGlobalVarDecl{Index(e[i]), Index(e[i+1]), Index(e[i+2]), Index(e[i+3])}
}

type ExtraLocalVarDecl struct {
	Type  Index
	Align Index
}

func (t *Tree) AddLocalVarDecl(v ExtraLocalVarDecl) uint32 {
	return t.AddExtra(uint32(v.Type), uint32(v.Align))
}
func (t *Tree) GetLocalVarDecl(i uint32) ExtraLocalVarDecl {
	return ExtraLocalVarDecl{Index(t.Extra[i]), Index(t.Extra[i+1])}
}

type ExtraPtrType struct {
	Sentinel  OptIndex
	Align     OptIndex
	Addrspace OptIndex
}

func (t *Tree) AddPtrType(v ExtraPtrType) uint32 {
	return t.AddExtra(uint32(v.Sentinel), uint32(v.Align), uint32(v.Addrspace))
}
func (t *Tree) GetPtrType(i uint32) ExtraPtrType {
	e := t.Extra
	return ExtraPtrType{Index(e[i]), Index(e[i+1]), Index(e[i+2])}
}

type ExtraPtrTypeBitRange struct {
	Sentinel  OptIndex
	Align     Index
	Addrspace OptIndex
	BitStart  Index
	BitEnd    Index
}

func (t *Tree) AddPtrTypeBitRange(v ExtraPtrTypeBitRange) uint32 {
	return t.AddExtra(uint32(v.Sentinel), uint32(v.Align), uint32(v.Addrspace), uint32(v.BitStart), uint32(v.BitEnd))
}
func (t *Tree) GetPtrTypeBitRange(i uint32) ExtraPtrTypeBitRange {
	e := t.Extra
	return ExtraPtrTypeBitRange{Index(e[i]), Index(e[i+1]), Index(e[i+2]), Index(e[i+3]), Index(e[i+4])}
}

type ExtraSlice struct {
	Start Index
	End   Index
}

func (t *Tree) AddSlice(v ExtraSlice) uint32 {
	return t.AddExtra(uint32(v.Start), uint32(v.End))
}
func (t *Tree) GetSlice(i uint32) ExtraSlice {
	return ExtraSlice{Index(t.Extra[i]), Index(t.Extra[i+1])}
}

type ExtraSliceSentinel struct {
	Start    Index
	End      OptIndex
	Sentinel Index
}

func (t *Tree) AddSliceSentinel(v ExtraSliceSentinel) uint32 {
	return t.AddExtra(uint32(v.Start), uint32(v.End), uint32(v.Sentinel))
}
func (t *Tree) GetSliceSentinel(i uint32) ExtraSliceSentinel {
	e := t.Extra
	return ExtraSliceSentinel{Index(e[i]), Index(e[i+1]), Index(e[i+2])}
}

type ExtraArrayTypeSentinel struct {
	Sentinel Index
	ElemType Index
}

func (t *Tree) AddArrayTypeSentinel(v ExtraArrayTypeSentinel) uint32 {
	return t.AddExtra(uint32(v.Sentinel), uint32(v.ElemType))
}
func (t *Tree) GetArrayTypeSentinel(i uint32) ExtraArrayTypeSentinel {
	return ExtraArrayTypeSentinel{Index(t.Extra[i]), Index(t.Extra[i+1])}
}

type ExtraContainerField struct {
	AlignExpr OptIndex
	ValueExpr OptIndex
}

func (t *Tree) AddContainerField(v ExtraContainerField) uint32 {
	return t.AddExtra(uint32(v.AlignExpr), uint32(v.ValueExpr))
}
func (t *Tree) GetContainerField(i uint32) ExtraContainerField {
	return ExtraContainerField{Index(t.Extra[i]), Index(t.Extra[i+1])}
}

type ExtraAsm struct {
	ItemsStart uint32
	ItemsEnd   uint32
	Rparen     uint32
}

func (t *Tree) AddAsm(v ExtraAsm) uint32 {
	return t.AddExtra(v.ItemsStart, v.ItemsEnd, v.Rparen)
}
func (t *Tree) GetAsm(i uint32) ExtraAsm {
	e := t.Extra
	return ExtraAsm{e[i], e[i+1], e[i+2]}
}

// AddDestructureLhs appends an inline `{count, nodes...}` record for
// assign_destructure and returns its start index.
func (t *Tree) AddDestructureLhs(lhs []Index) uint32 {
	start := uint32(len(t.Extra))
	t.Extra = append(t.Extra, uint32(len(lhs)))
	for _, n := range lhs {
		t.Extra = append(t.Extra, uint32(n))
	}
	return start
}

// GetDestructureLhs reads back the lhs list written by AddDestructureLhs.
func (t *Tree) GetDestructureLhs(i uint32) []Index {
	count := t.Extra[i]
	out := make([]Index, count)
	for k := uint32(0); k < count; k++ {
		out[k] = Index(t.Extra[i+1+k])
	}
	return out
}

// PackForBits and UnpackForBits split and join the For tag's
// {inputs:u31, has_else:u1} word (spec.md §4.6).
func PackForBits(inputs uint32, hasElse bool) uint32 {
	v := inputs & 0x7fffffff
	if hasElse {
		v |= 0x80000000
	}
	return v
}

func UnpackForBits(word uint32) (inputs uint32, hasElse bool) {
	return word & 0x7fffffff, word&0x80000000 != 0
}

// Package ast defines the compact, index-based abstract syntax tree that
// pkg/parser builds: a node array (tag + main-token + 2×u32 payload), a
// variable-length "extra" u32 arena, and a diagnostics list. See spec.md §3
// for the full data model and the tag→payload table this package
// implements.
package ast

// Tag discriminates an AST node's grammar production and, by the table in
// this file's doc comment, the interpretation of its Data payload. Once a
// tag ships, its payload interpretation is frozen: changing it without
// renaming the tag would silently corrupt every existing (node, extra)
// pair built against the old interpretation.
type Tag int

const (
	// Root must always be node index 0; its Data packs the top-level member
	// list the way a container's is packed: up to two members are stored
	// inline as optional node indices, and the Data is an ExtraRange only
	// when there are more than two.
	Root Tag = iota

	// Function prototypes / declarations. See ExtraFnProtoOne/ExtraFnProto in extra.go
	// for the multi-field shapes.
	FnProtoSimple // zero/one param, no extra modifiers: Data = {param?, return_type}
	FnProtoMulti  // >1 param, no extra modifiers: Data = {ExtraRange(params), return_type}
	FnProtoOne    // zero/one param, with modifiers: Data = {ExtraIndex(FnProtoOne), return_type}; the param? is in the extra struct
	FnProto       // >1 param, with modifiers: Data = {ExtraIndex(FnProto), return_type}
	FnDecl        // Data = {proto_node, body_node}

	// Variable declarations. Exactly one of these four tags is chosen by
	// which of {type, align, addrspace, section} are present (§4.3).
	SimpleVarDecl   // Data = {type?, init_expr?}
	AlignedVarDecl  // Data = {align_expr, init_expr?}
	LocalVarDecl    // Data = {ExtraIndex(LocalVarDecl), init_expr?}
	GlobalVarDecl   // Data = {ExtraIndex(GlobalVarDecl), init_expr?}

	ContainerFieldInit  // Data = {type_expr, value_expr}
	ContainerFieldAlign // Data = {type_expr, align_expr}
	ContainerField      // Data = {type_expr, ExtraIndex(ContainerField)}

	Block             // Data = ExtraRange(statements)
	BlockTwo          // Data = {stmt_one?, stmt_two?}
	BlockSemicolon    // Data = ExtraRange(statements); last had no trailing ';'… n/a (block bodies don't need trailing comma; kept for symmetry with *_two variants)
	BlockTwoSemicolon // Data = {stmt_one?, stmt_two?}

	Assign            // Data = {lhs, rhs}
	AssignDestructure // Data = ExtraIndex(DestructureLhs); extra[idx] is {count, lhs...}, rhs follows inline after the lhs list
	AssignMul
	AssignDiv
	AssignMod
	AssignAdd
	AssignSub
	AssignShl
	AssignShlSat
	AssignShr
	AssignBitAnd
	AssignBitXor
	AssignBitOr
	AssignMulWrap
	AssignAddWrap
	AssignSubWrap
	AssignMulSat
	AssignAddSat
	AssignSubSat

	// Binary operators. All Data = {lhs, rhs} unless noted.
	BoolOr
	BoolAnd
	EqualEqual
	BangEqual
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
	BitAnd
	BitXor
	BitOr
	Orelse
	Catch // Data = {lhs, rhs}; an optional |capture| follows MainToken: '|' at main_token+1, the identifier at main_token+2
	Shl
	ShlSat
	Shr
	Add
	Sub
	ArrayCat // ++
	AddWrap
	SubWrap
	AddSat
	SubSat
	MergeErrorSets // ||
	Mul
	Div
	Mod
	MulWrap
	MulSat

	// Prefix operators. Data = {operand, unused} unless noted.
	BoolNot
	Negation
	BitNot
	NegationWrap
	AddressOf
	Try
	Resume

	OptionalType  // Data = {child_type, unused}
	AnyframeType  // Data = {unused, child_type}

	PtrTypeAligned  // Data = {ExtraIndex(PtrType)?, child_type}
	PtrTypeSentinel // Data = {ExtraIndex(PtrType)?, child_type}
	PtrType         // Data = {ExtraIndex(PtrType), child_type}
	PtrTypeBitRange // Data = {ExtraIndex(PtrTypeBitRange), child_type}

	ArrayType         // Data = {len_expr, elem_type}
	ArrayTypeSentinel // Data = {len_expr, ExtraIndex(ArrayTypeSentinel)}

	SliceOpen     // Data = {sliced, start}
	Slice         // Data = {sliced, ExtraIndex(Slice)}
	SliceSentinel // Data = {sliced, ExtraIndex(SliceSentinel)}

	Deref          // Data = {operand, unused}
	FieldAccess    // Data = {operand, field_name_token_as_index}
	UnwrapOptional // Data = {operand, unused}
	ArrayAccess    // Data = {array, index_expr}

	CallOne       // Data = {callee, arg?}
	CallOneComma  // Data = {callee, arg?}
	Call          // Data = {callee, ExtraRange(args)}
	CallComma     // Data = {callee, ExtraRange(args)}

	BuiltinCallTwo      // Data = {arg_one?, arg_two?}
	BuiltinCallTwoComma // Data = {arg_one?, arg_two?}
	BuiltinCall         // Data = ExtraRange(args)
	BuiltinCallComma    // Data = ExtraRange(args)

	StructInitOne          // Data = {type?, field_init?}
	StructInitOneComma     // Data = {type?, field_init?}
	StructInit             // Data = {type, ExtraRange(field_inits)}
	StructInitComma        // Data = {type, ExtraRange(field_inits)}
	StructInitDotTwo       // Data = {field_init_one?, field_init_two?}
	StructInitDotTwoComma  // Data = {field_init_one?, field_init_two?}
	StructInitDot          // Data = ExtraRange(field_inits)
	StructInitDotComma     // Data = ExtraRange(field_inits)

	ArrayInitOne         // Data = {type?, elem?}
	ArrayInitOneComma    // Data = {type?, elem?}
	ArrayInit            // Data = {type, ExtraRange(elems)}
	ArrayInitComma       // Data = {type, ExtraRange(elems)}
	ArrayInitDotTwo      // Data = {elem_one?, elem_two?}
	ArrayInitDotTwoComma // Data = {elem_one?, elem_two?}
	ArrayInitDot         // Data = ExtraRange(elems)
	ArrayInitDotComma    // Data = ExtraRange(elems)

	ErrorUnion   // Data = {error_set, payload_type}
	ErrorSetDecl // Data = ExtraRange(error_values); main_token is `error`
	ErrorValue   // Data = unused; main_token is the identifier

	GroupedExpression // Data = {expr, rparen_token_as_index}

	StringLiteral             // Data = unused; main_token is the literal
	MultilineStringLiteral    // Data = {ExtraIndex of the [first, end) token range of the contiguous line tokens, unused}
	NumberLiteral             // Data = unused; main_token is the literal
	CharLiteralTag            // Data = unused; main_token is the literal
	UnreachableLiteral        // Data = unused
	IdentifierTag             // Data = unused; main_token is the identifier
	EnumLiteral               // Data = unused; main_token is the identifier after '.'
	AnyframeLiteral           // Data = unused

	IfSimple  // Data = {condition, then_expr}
	If        // Data = {condition, ExtraIndex(If)}
	ForSimple // Data = {input (exactly one), then_expr}
	For       // Data = {start_of_inline_extra, packed(inputs_count:31,has_else:1)}
	ForRange  // Data = {start?, end?}; used as a for-input range item

	WhileSimple // Data = {condition, then_expr}
	WhileCont   // Data = {condition, ExtraIndex(WhileCont)}
	While       // Data = {condition, ExtraIndex(While)}

	Switch       // Data = {operand, ExtraRange(prongs)}
	SwitchComma  // Data = {operand, ExtraRange(prongs)}

	SwitchCaseOne       // Data = {item?, target_expr}
	SwitchCaseOneInline // Data = {item?, target_expr}
	SwitchCase          // Data = {ExtraRange(items), target_expr}
	SwitchCaseInline    // Data = {ExtraRange(items), target_expr}
	SwitchRange         // Data = {start, end}

	Asm       // Data = {template_expr, ExtraIndex(Asm)}
	AsmSimple // Data = {template_expr, rparen_token_as_index}
	AsmInput  // Data = {type_or_expr, unused}; main_token is the '[' of the symbolic name
	AsmOutput // Data = {type_or_expr, unused}

	ComptimeTag
	NosuspendTag
	SuspendTag
	DeferTag
	ErrdeferTag // Data = {payload_token_as_index?, expr}

	BreakTag    // Data = {label?, value?}
	ContinueTag // Data = {label?, unused}
	ReturnTag   // Data = {value?, unused}

	TestDecl // Data = {name_token_as_index?, block}

	ContainerDecl              // Data = ExtraRange(members)
	ContainerDeclTrailing      // Data = ExtraRange(members)
	ContainerDeclTwo           // Data = {member_one?, member_two?}
	ContainerDeclTwoTrailing   // Data = {member_one?, member_two?}
	ContainerDeclArg           // Data = {arg_expr, ExtraIndex(SubRange(members))}
	ContainerDeclArgTrailing   // Data = {arg_expr, ExtraIndex(SubRange(members))}

	TaggedUnion                     // Data = ExtraRange(members)
	TaggedUnionTrailing             // Data = ExtraRange(members)
	TaggedUnionTwo                  // Data = {member_one?, member_two?}
	TaggedUnionTwoTrailing          // Data = {member_one?, member_two?}
	TaggedUnionEnumTag              // Data = {arg_expr, ExtraIndex(SubRange(members))}
	TaggedUnionEnumTagTrailing      // Data = {arg_expr, ExtraIndex(SubRange(members))}

	numTags // sentinel; not a real tag
)

// NoneNode is the sentinel optional-node value: every optional Node.Index
// field uses this rather than 0, since 0 is the real root node.
const NoneNode Index = ^Index(0)

// Index identifies a node within a Tree's Nodes arena.
type Index uint32

// Data is a node's fixed 2×u32 payload. Its interpretation is determined
// entirely by the owning Node's Tag, per the table at the top of this file.
type Data struct {
	LHS uint32
	RHS uint32
}

// Node is a single AST record: a grammar tag, an "anchor" token index
// (main_token — conventionally the operator, keyword, or literal that most
// identifies the production), and its tag-interpreted payload.
type Node struct {
	Tag       Tag
	MainToken uint32
	Data      Data
}

package ast

// DiagTag enumerates every recoverable condition the parser can report.
// A parse never aborts on these; it records one and keeps going (spec.md
// §5). Members grouped roughly by the production that raises them.
type DiagTag int

const (
	ExpectedToken DiagTag = iota
	ExpectedExpr
	ExpectedStatement
	ExpectedSemiAfterStmt
	ExpectedCommaAfterField
	ExpectedCommaAfterArg
	ExpectedCommaAfterParam
	ExpectedCommaAfterInitializer
	ExpectedLabelable
	ExpectedVarConst
	ExpectedContainerMembers

	DeclBetweenFields
	PreviousField
	NextField

	ChainedComparisonOperators
	InvalidAmpersandAmpersand
	MismatchedBinaryOpWhitespace

	WrongEqualVarDecl
	ExtraConstQualifier
	ExtraAlignQualifier
	ExtraAddrspaceQualifier
	ExtraSectionQualifier

	VarargsNonfinal
	ExtraForCapture
	ForInputNotCaptured

	CStyleContainer
	ZigStyleContainer

	SameLineDocComment
	TestDocComment
	ComptimeDocComment
	UnattachedDocComment

	PtrModOnArrayChildType
	InvalidBitRange
)

var diagNames = map[DiagTag]string{
	ExpectedToken:                 "expected_token",
	ExpectedExpr:                  "expected_expr",
	ExpectedStatement:             "expected_statement",
	ExpectedSemiAfterStmt:         "expected_semi_after_stmt",
	ExpectedCommaAfterField:       "expected_comma_after_field",
	ExpectedCommaAfterArg:         "expected_comma_after_arg",
	ExpectedCommaAfterParam:       "expected_comma_after_param",
	ExpectedCommaAfterInitializer: "expected_comma_after_initializer",
	ExpectedLabelable:             "expected_labelable",
	ExpectedVarConst:              "expected_var_const",
	ExpectedContainerMembers:      "expected_container_members",
	DeclBetweenFields:             "decl_between_fields",
	PreviousField:                 "previous_field",
	NextField:                     "next_field",
	ChainedComparisonOperators:    "chained_comparison_operators",
	InvalidAmpersandAmpersand:     "invalid_ampersand_ampersand",
	MismatchedBinaryOpWhitespace:  "mismatched_binary_op_whitespace",
	WrongEqualVarDecl:             "wrong_equal_var_decl",
	ExtraConstQualifier:           "extra_const_qualifier",
	ExtraAlignQualifier:           "extra_align_qualifier",
	ExtraAddrspaceQualifier:       "extra_addrspace_qualifier",
	ExtraSectionQualifier:         "extra_section_qualifier",
	VarargsNonfinal:               "varargs_nonfinal",
	ExtraForCapture:               "extra_for_capture",
	ForInputNotCaptured:           "for_input_not_captured",
	CStyleContainer:               "c_style_container",
	ZigStyleContainer:             "zig_style_container",
	SameLineDocComment:            "same_line_doc_comment",
	TestDocComment:                "test_doc_comment",
	ComptimeDocComment:            "comptime_doc_comment",
	UnattachedDocComment:          "unattached_doc_comment",
	PtrModOnArrayChildType:        "ptr_mod_on_array_child_type",
	InvalidBitRange:               "invalid_bit_range",
}

func (d DiagTag) String() string {
	if s, ok := diagNames[d]; ok {
		return s
	}
	return "unknown_diagnostic"
}

// Diagnostic is one recorded parse fault. Token is the offending token's
// index in the source Stream (or, when TokenIsPrev is set, the token
// immediately before where the parser expected something — used for
// "expected X after Y" messages that want to point at Y). Extra carries a
// tag-specific payload: for ExpectedToken it holds the expected
// token.Tag; zero otherwise (the DeclBetweenFields/PreviousField/NextField
// group is recorded as three diagnostics, each pointing at its own token).
type Diagnostic struct {
	Tag         DiagTag
	Token       uint32
	TokenIsPrev bool
	IsNote      bool
	Extra       uint32
}

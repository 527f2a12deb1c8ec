package ast

import "testing"

func TestDiagTagStringKnownAndUnknown(t *testing.T) {
	if got := WrongEqualVarDecl.String(); got != "wrong_equal_var_decl" {
		t.Fatalf("WrongEqualVarDecl.String() = %q, want wrong_equal_var_decl", got)
	}
	if got := DiagTag(-1).String(); got != "unknown_diagnostic" {
		t.Fatalf("DiagTag(-1).String() = %q, want unknown_diagnostic", got)
	}
}

func TestDiagnosticCarriesTokenAndExtra(t *testing.T) {
	d := Diagnostic{Tag: ExpectedToken, Token: 7, Extra: uint32(42)}
	if d.Token != 7 || d.Extra != 42 || d.TokenIsPrev || d.IsNote {
		t.Fatalf("Diagnostic = %+v, unexpected zero-value defaults", d)
	}
}

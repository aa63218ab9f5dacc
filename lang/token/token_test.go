package token

import "testing"

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestTokenGoString(t *testing.T) {
	if got := LPAREN.GoString(); got != "'('" {
		t.Errorf("LPAREN.GoString() = %q, want '('", got)
	}
	if got := IDENT.GoString(); got != "identifier" {
		t.Errorf("IDENT.GoString() = %q, want identifier (unquoted)", got)
	}
}

package token

// Value carries the scanned literal alongside its Token kind: Raw holds
// the exact source text (used for VAR/FUNC/LABEL/IDENT names, stripped
// of their sigil), Int holds the decoded value of a NUMBER.
type Value struct {
	Raw string
	Pos Pos
	Int int64
}

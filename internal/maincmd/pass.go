package maincmd

import (
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/token"
)

// readSource reads the single SOURCE argument every pass command takes,
// returning its bytes alongside a token.FileSet the corresponding parser
// wants for position-tagged error messages.
func readSource(args []string) (fset *token.FileSet, filename string, src []byte, err error) {
	if len(args) != 1 {
		return nil, "", nil, fmt.Errorf("expected exactly one SOURCE argument, got %d", len(args))
	}
	filename = args[0]
	src, err = os.ReadFile(filename)
	if err != nil {
		return nil, "", nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return token.NewFileSet(), filename, src, nil
}

// writeOutput writes content to name in the current directory, one of
// the fixed pass-boundary file names: prog.a, prog.IR, prog.L2, prog.L1,
// prog.S.
func writeOutput(name, content string) error {
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func dumpVerbose(stdio mainer.Stdio, label string, dump func() string) {
	fmt.Fprintf(stdio.Stdout, "-- %s --\n%s\n", label, dump())
}

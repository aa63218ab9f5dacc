package lb_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/sixpass/internal/filetest"
	"github.com/mna/sixpass/lang/lb"
	"github.com/mna/sixpass/lang/lbparse"
	"github.com/mna/sixpass/lang/token"
)

var update = flag.Bool("test.update-dump-tests", false, "update the lb.Fprint golden files")

// TestFprintMatchesGoldenFiles parses every testdata/*.lb file and checks
// lb.Fprint's -v dump against its golden .want file, one source file
// per case.
func TestFprintMatchesGoldenFiles(t *testing.T) {
	const dir = "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".lb") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}
			fset := token.NewFileSet()
			prog, err := lbparse.ParseBytes(fset, fi.Name(), src)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			lb.Fprint(&buf, prog)
			filetest.DiffOutput(t, fi, buf.String(), dir, update)
		})
	}
}

package compiler_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/nilstack/minic/internal/filetest"
	"github.com/nilstack/minic/lang/compiler"
	"github.com/nilstack/minic/lang/parser"
	"github.com/nilstack/minic/lang/resolver"
	"github.com/stretchr/testify/require"
)

var testUpdateDisasmGolden = flag.Bool("test.update-disasm-golden", false, "If set, replace expected disasm golden files with actual output.")

// TestDisasmGolden compiles every program under testdata/in and compares
// Dasm's output against testdata/out's golden files, the way the teacher's
// scanner/parser/resolver golden tests compare a phase's textual dump.
func TestDisasmGolden(t *testing.T) {
	srcDir, outDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourcePrograms(t, srcDir, ".mc") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			prog, err := parser.ParseFile(fi.Name(), src)
			require.NoError(t, err)
			rp, err := resolver.Resolve(prog)
			require.NoError(t, err)
			cp, err := compiler.Compile(rp)
			require.NoError(t, err)

			out, err := compiler.Dasm(cp)
			require.NoError(t, err)

			filetest.AssertGolden(t, fi, "disasm", ".dasm.want", string(out), outDir, testUpdateDisasmGolden)
		})
	}
}

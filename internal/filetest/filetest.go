// Package filetest drives golden-file tests over a directory of minic
// source programs: for every file with a given source extension under a
// testdata input directory, it compares a phase's actual output against
// a golden file of the same name (plus a result-specific suffix) under a
// corresponding output directory.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var updateGoldenFiles = flag.Bool("test.update-golden", false, "If set, overwrite every golden file with the actual output instead of comparing against it.")

// SourcePrograms returns the minic source files (by extension, including
// the leading dot) found directly under dir, sorted by os.ReadDir.
func SourcePrograms(t *testing.T, dir, ext string) []os.FileInfo {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	fis := make([]os.FileInfo, 0, len(dents))
	for _, dent := range dents {
		if !dent.Type().IsRegular() {
			continue
		}
		if ext != "" && filepath.Ext(dent.Name()) != ext {
			continue
		}
		fi, err := dent.Info()
		if err != nil {
			t.Fatal(err)
		}
		fis = append(fis, fi)
	}
	return fis
}

// AssertGolden compares got against the golden file resultDir/<base><ext>
// (base is fi.Name() with its own extension stripped), failing the test
// and printing a unified diff on mismatch. With -test.update-golden (or
// updateFlag itself) set, the golden file is overwritten with got instead.
func AssertGolden(t *testing.T, fi os.FileInfo, label, ext, got, resultDir string, updateFlag *bool) {
	t.Helper()

	base := fi.Name()[:len(fi.Name())-len(filepath.Ext(fi.Name()))]
	goldenPath := filepath.Join(resultDir, base+ext)

	if (updateFlag != nil && *updateFlag) || *updateGoldenFiles {
		if err := os.WriteFile(goldenPath, []byte(got), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldenPath)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	want := string(wantb)
	if testing.Verbose() {
		t.Logf("got %s:\n%s\n", label, got)
	}
	if patch := diff.Diff(want, got); patch != "" {
		if testing.Verbose() {
			t.Logf("want %s:\n%s\n", label, want)
		}
		t.Errorf("%s diff (-want +got):\n%s\n", label, patch)
	}
}

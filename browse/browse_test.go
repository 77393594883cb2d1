package browse

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spatialmodel/climex"
)

// makeTree creates directories and empty files under root. Paths ending
// in a separator are directories.
func makeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOptions(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		"a/x/", "a/y/", "b/y/", "b/z/", "b/file.nc", "c.nc")
	o, err := Options(filepath.Join(root, "*"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"x", "y", "z"}; !reflect.DeepEqual(o, want) {
		t.Errorf("got %v, want %v", o, want)
	}
	o, err = Options(filepath.Join(root, "b", "z"))
	if err != nil {
		t.Fatal(err)
	}
	if len(o) != 0 {
		t.Errorf("leaf: got %v", o)
	}
}

func TestMenu(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		"CMIP5/output1/MOHC/day/tas.nc",
		"CMIP5/output1/MOHC/mon/tas.nc",
		"CMIP5/output1/MOHC/mon/pr.nc",
		"CMIP5/output1/NCAR/mon/tas.nc",
	)

	t.Run("choose", func(t *testing.T) {
		var out bytes.Buffer
		// CMIP5 and output1 are chosen automatically.
		m := &Menu{In: strings.NewReader("1\n2\n"), Out: &out}
		pattern, files, err := m.Run(root)
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(root, "CMIP5", "output1", "MOHC", "mon", "*.nc"); pattern != want {
			t.Errorf("pattern: got %s, want %s", pattern, want)
		}
		want := []string{
			filepath.Join(root, "CMIP5", "output1", "MOHC", "mon", "pr.nc"),
			filepath.Join(root, "CMIP5", "output1", "MOHC", "mon", "tas.nc"),
		}
		if !reflect.DeepEqual(files, want) {
			t.Errorf("files: got %v, want %v", files, want)
		}
		if !strings.Contains(out.String(), "0) *\n1) MOHC\n2) NCAR\n") {
			t.Errorf("prompt: got %q", out.String())
		}
	})

	t.Run("all", func(t *testing.T) {
		m := &Menu{In: strings.NewReader("0\n2\n"), Out: new(bytes.Buffer)}
		pattern, files, err := m.Run(root)
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(root, "CMIP5", "output1", "*", "mon", "*.nc"); pattern != want {
			t.Errorf("pattern: got %s, want %s", pattern, want)
		}
		if len(files) != 3 {
			t.Errorf("files: got %v", files)
		}
	})

	for name, input := range map[string]string{
		"out of range": "7\n",
		"not a number": "MOHC\n",
		"no input":     "",
	} {
		t.Run(name, func(t *testing.T) {
			m := &Menu{In: strings.NewReader(input), Out: new(bytes.Buffer)}
			if _, _, err := m.Run(root); errors.Cause(err) != climex.ErrInvalidArgument {
				t.Errorf("got %v, want %v", err, climex.ErrInvalidArgument)
			}
		})
	}
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/go-lisplang/internal/interp"
	"github.com/cwbudde/go-lisplang/internal/lexer"
	"github.com/cwbudde/go-lisplang/internal/parser"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestProgramFixtures runs every fixture program through the full pipeline
// and snapshots its print output together with its result value.
func TestProgramFixtures(t *testing.T) {
	fixtures, err := filepath.Glob("../../../testdata/fixtures/*.lisp")
	if err != nil {
		t.Fatal(err)
	}
	if len(fixtures) == 0 {
		t.Fatal("no fixture programs found")
	}

	for _, fixture := range fixtures {
		name := strings.TrimSuffix(filepath.Base(fixture), ".lisp")
		t.Run(name, func(t *testing.T) {
			source, err := readFixture(fixture)
			if err != nil {
				t.Fatal(err)
			}

			p := parser.New(lexer.New(source))
			program := p.ParseProgram()
			if errs := p.Errors(); len(errs) > 0 {
				t.Fatalf("parse of %s failed: %v", fixture, errs)
			}

			var out bytes.Buffer
			in := interp.New(&out)
			result, err := in.Run(program, nil)
			if err != nil {
				t.Fatalf("evaluation of %s failed: %v", fixture, err)
			}

			serialized, serr := result.Serialize()
			if serr != nil {
				serialized = result.ErrorDump()
			}
			rendered := fmt.Sprintf("output:\n%sresult: %s\n", out.String(), serialized)
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_run", name), rendered)

			if live := in.LiveHandlerStates(); live != 0 {
				t.Errorf("%d handler states leaked by %s", live, name)
			}
		})
	}
}

func readFixture(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

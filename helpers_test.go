package nodeedit

import (
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pmezard/go-difflib/difflib"
)

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	v, err := Decode([]byte(s))
	if err != nil {
		t.Fatalf("decode error: %v\n%s", err, s)
	}
	return v
}

// compact encodes v without indentation, keeping key order visible.
func compact(t *testing.T, v any) string {
	t.Helper()
	s, err := Encode(v, "")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	return s
}

// canonical re-encodes JSON text the way a session writes it.
func canonical(t *testing.T, s string) string {
	t.Helper()
	out, err := Encode(mustDecode(t, s), DefaultIndent)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	return out
}

func mustDecodePatch(t *testing.T, s string) jsonpatch.Patch {
	t.Helper()
	patch, err := jsonpatch.DecodePatch([]byte(s))
	if err != nil {
		t.Fatalf("jsonpatch decode error: %v", err)
	}
	return patch
}

func unifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func diffStats(diff string) (adds, removes int) {
	for _, line := range strings.Split(diff, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			if !strings.HasPrefix(line, "+++") {
				adds++
			}
		case '-':
			if !strings.HasPrefix(line, "---") {
				removes++
			}
		}
	}
	return
}

package runnerconfig

import (
	"strings"
	"testing"
)

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func TestValidate_ValidConfig(t *testing.T) {
	errs := Validate([]byte(`
runners:
  default:
    family: ["m7*", "c7"]
    cpu: [2, 8]
    ram: 16
    spot: price-capacity-optimized
  single:
    family: r7a.large
    spot: false
`))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errorStrings(errs))
	}
}

func TestValidate_EmptyDocument(t *testing.T) {
	if errs := Validate(nil); len(errs) != 0 {
		t.Fatalf("expected no errors for empty document, got %v", errorStrings(errs))
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	errs := Validate([]byte(`
runners:
  inverted:
    family: [m7]
    cpu: [16, 8]
  bad-shape:
    family: [m7, {x: 1}]
    ram: [1, 2, 3]
  bad-family:
    family: {m7: true}
    cpu: 4
  bad-spot:
    family: [c7]
    spot: [true]
  empty: {}
  scalar: nope
`))

	want := []string{
		"runners.inverted.cpu: range 16:8 has max below min",
		"runners.bad-shape.family[1]: must be a string",
		"runners.bad-shape.ram: invalid value",
		"runners.bad-family.family: must be a string or a list of strings",
		"runners.bad-spot.spot: must be true, false or a strategy name",
		"runners.empty: no family, cpu or ram",
		"runners.scalar: must be a mapping",
	}
	got := errorStrings(errs)
	if len(got) != len(want) {
		t.Fatalf("got %d errors %v; want %d", len(got), got, len(want))
	}
	for i := range want {
		if !strings.HasPrefix(got[i], want[i]) {
			t.Errorf("error %d = %q; want prefix %q", i, got[i], want[i])
		}
	}
}

func TestValidate_ParseError(t *testing.T) {
	errs := Validate([]byte("runners: [a]\n"))
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Error(), "parse:") {
		t.Fatalf("expected a single parse error, got %v", errorStrings(errs))
	}
}

package ghost

import (
	"regexp"
	"testing"
)

type fixedIntN []int

func (f *fixedIntN) IntN(n int) int {
	v := (*f)[0]
	*f = (*f)[1:]
	return v % n
}

func TestNameShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)
	src := NewSource(42)
	for i := 0; i < 500; i++ {
		name := Name(src)
		if !pattern.MatchString(name) || !Valid(name) {
			t.Fatalf("unexpected ghost name %q", name)
		}
	}
}

func TestNameUsesIndependentDraws(t *testing.T) {
	src := fixedIntN{2, 7}
	if got := Name(&src); got != "Shadow Tiger" {
		t.Fatalf("expected Shadow Tiger, got %q", got)
	}
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	a, b := NewSource(7), NewSource(7)
	for i := 0; i < 20; i++ {
		if Name(a) != Name(b) {
			t.Fatalf("same seed produced different names at draw %d", i)
		}
	}
}

func TestValidRejectsOtherShapes(t *testing.T) {
	for _, name := range []string{"", "Silent", "Silent Dog", "Loud Owl", "Silent  Owl", "Silent Owl Extra"} {
		if Valid(name) {
			t.Fatalf("expected %q to be invalid", name)
		}
	}
}

func TestElapsedLabel(t *testing.T) {
	cases := map[int]string{0: "0m", 59: "59m", 60: "1h 0m", 135: "2h 15m", -3: "0m"}
	for in, want := range cases {
		if got := ElapsedLabel(in); got != want {
			t.Fatalf("ElapsedLabel(%d) = %q, want %q", in, got, want)
		}
	}
}

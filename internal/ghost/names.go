package ghost

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	Adjectives = [8]string{"Silent", "Mystic", "Shadow", "Quiet", "Hidden", "Phantom", "Cosmic", "Serene"}
	Nouns      = [8]string{"Owl", "Fox", "Panda", "Wolf", "Raven", "Cat", "Koala", "Tiger"}
)

// IntN is the slice of a random source the generator needs. *rand.Rand
// satisfies it.
type IntN interface {
	IntN(n int) int
}

// Name draws "<Adjective> <Noun>" with independent uniform indices. Names are
// cosmetic and not unique.
func Name(r IntN) string {
	return Adjectives[r.IntN(len(Adjectives))] + " " + Nouns[r.IntN(len(Nouns))]
}

// Source is a goroutine-safe IntN.
type Source struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewSource(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func NewTimeSource() *Source {
	return NewSource(uint64(time.Now().UnixNano()))
}

func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Valid reports whether name has the generated shape.
func Valid(name string) bool {
	adj, noun, ok := strings.Cut(name, " ")
	if !ok {
		return false
	}
	return slices.Contains(Adjectives[:], adj) && slices.Contains(Nouns[:], noun)
}

// ElapsedLabel formats minutes as "Nh Mm" from an hour upward, else "Mm".
func ElapsedLabel(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes >= 60 {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

package domain

import (
	"math/rand"
	"testing"
)

func TestGenerateSequenceFixedHead(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		seq := GenerateSequence(SequenceLength(30), rng)

		if len(seq) != 40 {
			t.Fatalf("Expected length 40, got %d", len(seq))
		}
		if seq[0] != StartDirection || seq[1] != StartDirection {
			t.Errorf("Expected first two steps to be %v, got %v %v", StartDirection, seq[0], seq[1])
		}

		// Каждый индекс должен иметь корректное бинарное значение
		for i, d := range seq {
			if d != DirLeft && d != DirRight {
				t.Errorf("Index %d has invalid direction %d", i, d)
			}
		}
	}
}

func TestGenerateSequenceDeterministic(t *testing.T) {
	a := GenerateSequence(100, rand.New(rand.NewSource(7)))
	b := GenerateSequence(100, rand.New(rand.NewSource(7)))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Sequences diverge at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenerateSequenceFlipRate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seq := GenerateSequence(10000, rng)

	flips := 0
	for i := 2; i < len(seq); i++ {
		if seq[i] != seq[i-1] {
			flips++
		}
	}

	rate := float64(flips) / float64(len(seq)-2)
	if rate < 0.25 || rate > 0.35 {
		t.Errorf("Expected flip rate around 0.30, got %.3f", rate)
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	seq := StepSequence{DirRight, DirRight, DirLeft, DirRight}
	back := SequenceFromInts(seq.ToInts())

	if len(back) != len(seq) {
		t.Fatalf("Expected length %d, got %d", len(seq), len(back))
	}
	for i := range seq {
		if back[i] != seq[i] {
			t.Errorf("Index %d: expected %v, got %v", i, seq[i], back[i])
		}
	}
}

package useragent

import (
	"sync"
	"testing"
)

func TestPool_GetSequential(t *testing.T) {
	p := NewPool([]string{"A", "B", "C"})

	for i, want := range []string{"A", "B", "C", "A"} {
		if got := p.Next(); got != want {
			t.Errorf("call %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestPool_Default(t *testing.T) {
	p := NewPool(nil)
	if p.Len() != len(DefaultPool) {
		t.Errorf("expected pool length %d, got %d", len(DefaultPool), p.Len())
	}
	if got := p.GetSequential(); got != DefaultPool[0] {
		t.Errorf("expected %s, got %s", DefaultPool[0], got)
	}
}

func TestPool_DropsBlankEntries(t *testing.T) {
	p := NewPool([]string{"  ", "Only/1.0", ""})
	if p.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", p.Len())
	}
	if got := p.Next(); got != "Only/1.0" {
		t.Errorf("expected Only/1.0, got %s", got)
	}

	allBlank := NewPool([]string{" ", "\t"})
	if allBlank.Len() != len(DefaultPool) {
		t.Errorf("expected blank-only input to fall back to defaults, got %d entries", allBlank.Len())
	}
}

func TestPool_GetRandom(t *testing.T) {
	p := NewRandomPool([]string{"A", "B"})

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		got := p.Next()
		if got != "A" && got != "B" {
			t.Fatalf("unexpected UA: %s", got)
		}
		seen[got] = true
	}

	if !seen["A"] || !seen["B"] {
		t.Errorf("expected to see both A and B randomly, seen: %v", seen)
	}
}

func TestPool_Concurrent(t *testing.T) {
	uas := []string{"X", "Y", "Z"}
	p := NewPool(uas)

	var wg sync.WaitGroup
	const routines = 50
	const iterations = 300

	results := make(chan string, routines*iterations)

	for i := 0; i < routines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				results <- p.GetSequential()
			}
		}()
	}

	wg.Wait()
	close(results)

	counts := map[string]int{}
	for r := range results {
		counts[r]++
	}

	want := (routines * iterations) / len(uas)
	for _, ua := range uas {
		if counts[ua] != want {
			t.Errorf("expected %d hits for %s, got %d", want, ua, counts[ua])
		}
	}
}

func TestPool_Empty(t *testing.T) {
	p := &Pool{}

	if got := p.GetSequential(); got != "" {
		t.Errorf("expected empty string on empty sequential, got %s", got)
	}
	if got := p.GetRandom(); got != "" {
		t.Errorf("expected empty string on empty random, got %s", got)
	}
}

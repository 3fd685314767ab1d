package gen_test

import (
	"testing"
	"time"

	"github.com/pilosa/txnimport/fake/gen"
)

func TestTime(t *testing.T) {
	g := gen.NewGenerator(0)
	start := time.Date(2018, 01, 01, 0, 0, 0, 0, time.UTC)
	last := start
	for i := 0; i < 1000; i++ {
		tim := g.Time(start, time.Second)
		if tim.Before(last) {
			t.Fatalf("generated a time before the last time")
		}
		if tim.Sub(last) > time.Second {
			t.Fatalf("generated a time more than a second after the last one")
		}
		last = tim
	}
}

func TestUint64(t *testing.T) {
	g := gen.NewGenerator(1)
	counts := make([]int, 10)
	for i := 0; i < 10000; i++ {
		v := g.Uint64(10)
		if v >= 10 {
			t.Fatalf("value %d out of range", v)
		}
		counts[v]++
	}
	if counts[0] <= counts[9] {
		t.Fatalf("expected skew toward small values: %v", counts)
	}
}

func TestAmount(t *testing.T) {
	g := gen.NewGenerator(2)
	for i := 0; i < 1000; i++ {
		a := g.Amount(50)
		if a < 0 {
			t.Fatalf("negative amount %v", a)
		}
		if cents := a * 100; cents-float64(int64(cents+0.5)) > 1e-6 {
			t.Fatalf("amount %v not rounded to cents", a)
		}
	}
}

func TestDeterministic(t *testing.T) {
	a, b := gen.NewGenerator(7), gen.NewGenerator(7)
	for i := 0; i < 100; i++ {
		if a.Uint64(100) != b.Uint64(100) || a.Intn(5) != b.Intn(5) {
			t.Fatal("generators with the same seed diverged")
		}
	}
}

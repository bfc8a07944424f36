package common

import (
	"math"
	"testing"
)

func TestNormalizeSum(t *testing.T) {
	v := []float64{1, 3, 0, 4}
	if !NormalizeSum(v) {
		t.Fatal("NormalizeSum returned false for a non-zero vector")
	}

	sum := 0.0
	for _, x := range v {
		sum += x
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("sum after normalization = %v", sum)
	}
	if !(v[3] > v[1] && v[1] > v[0] && v[0] > v[2]) {
		t.Fatalf("ordering not preserved: %v", v)
	}
}

func TestNormalizeSumSilence(t *testing.T) {
	v := []float64{0, 0, 0}
	if NormalizeSum(v) {
		t.Fatal("NormalizeSum returned true for silence")
	}
	for i, x := range v {
		if x != 0 || math.IsNaN(x) {
			t.Fatalf("v[%d] = %v, want 0", i, x)
		}
	}
}

func TestArgMax(t *testing.T) {
	if got := ArgMax([]float64{0.1, 0.7, 0.2}); got != 1 {
		t.Fatalf("ArgMax = %d, want 1", got)
	}
	if got := ArgMax(nil); got != -1 {
		t.Fatalf("ArgMax(nil) = %d, want -1", got)
	}
}

package internal

import (
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	var slept []time.Duration
	b := NewBackoff(time.Microsecond, 5*time.Microsecond)
	b.sleep = func(d time.Duration) { slept = append(slept, d) }
	for range 4 {
		b.Miss()
	}
	want := []time.Duration{1, 2, 4, 5}
	for i := range want {
		if slept[i] != want[i]*time.Microsecond {
			t.Errorf("miss %d slept %s", i, slept[i])
		}
	}
	b.Hit()
	if b.Wait() != time.Microsecond {
		t.Errorf("wait after hit %s", b.Wait())
	}
}

func TestFillPrand(t *testing.T) {
	a := make([]byte, 9)
	b := make([]byte, 9)
	next := FillPrand(a, 42)
	if FillPrand(b, 42) != next || string(a) != string(b) {
		t.Fatal("not deterministic")
	}
	if FillPrand(b, next); string(a) == string(b) {
		t.Error("sequence did not advance")
	}
	FillPrand(a, 0)
	if string(a) == string(make([]byte, 9)) {
		t.Error("zero seed produced zeros")
	}
}

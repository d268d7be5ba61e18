package edmac

import "testing"

func TestRingInit(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		const bufsize = 64
		descs := make([]Descriptor, n)
		pool := make([]byte, n*bufsize)
		var r Ring
		r.init(descs, pool, bufsize, StatusACT)
		dle := 0
		for i := range descs {
			d := &descs[i]
			if d.Status()&StatusDLE != 0 {
				dle++
				if i != n-1 {
					t.Errorf("n=%d: DLE set on descriptor %d", n, i)
				}
				if d.Next() != 0 {
					t.Errorf("n=%d: last descriptor does not link to base", n)
				}
			} else if d.Next() != i+1 {
				t.Errorf("n=%d: descriptor %d links to %d", n, i, d.Next())
			}
			if d.Owner() != OwnerHardware {
				t.Errorf("n=%d: descriptor %d owner %s", n, i, d.Owner())
			}
			if d.Cap() != bufsize || len(d.Buf()) != bufsize || cap(d.Buf()) != bufsize {
				t.Errorf("n=%d: descriptor %d bad buffer", n, i)
			}
		}
		if dle != 1 {
			t.Errorf("n=%d: want exactly one DLE, got %d", n, dle)
		}
		// Following next from the cursor returns to the start after n steps.
		for range n {
			r.advance()
		}
		if r.Cursor() != 0 {
			t.Errorf("n=%d: cursor did not wrap: %d", n, r.Cursor())
		}
	}
}

func TestRingBuffersDisjoint(t *testing.T) {
	const n, bufsize = 3, 32
	descs := make([]Descriptor, n)
	pool := make([]byte, n*bufsize)
	var r Ring
	r.init(descs, pool, bufsize, 0)
	for i := range descs {
		buf := descs[i].Buf()
		for j := range buf {
			buf[j] = byte(i + 1)
		}
	}
	for i, b := range pool {
		if want := byte(i/bufsize + 1); b != want {
			t.Fatalf("pool[%d]=%d, want %d", i, b, want)
		}
	}
	if descs[0].Owner() != OwnerSoftware {
		t.Errorf("initial TX owner %s", descs[0].Owner())
	}
}

func TestStatusOwner(t *testing.T) {
	tests := []struct {
		s    Status
		want Owner
	}{
		{0, OwnerSoftware},
		{StatusDLE | StatusSingleFrame, OwnerSoftware},
		{StatusACT, OwnerHardware},
		{StatusACT | StatusFE, OwnerHardware},
		{StatusFE | StatusCERF, OwnerSoftwareError},
	}
	for _, tt := range tests {
		if got := tt.s.Owner(); got != tt.want {
			t.Errorf("Status(%#x).Owner()=%s, want %s", uint32(tt.s), got, tt.want)
		}
	}
}

func TestDescriptorSetLenPanics(t *testing.T) {
	descs := make([]Descriptor, 1)
	var r Ring
	r.init(descs, make([]byte, 16), 16, 0)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	descs[0].SetLen(17)
}

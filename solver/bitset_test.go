package solver

import "testing"

func TestBitsetBasics(t *testing.T) {
	b := newBitset(130)
	if !b.none() {
		t.Errorf("fresh bitset should be empty")
	}
	for _, i := range []int{0, 63, 64, 129} {
		b.set(i)
		if !b.test(i) {
			t.Errorf("bit %d not set", i)
		}
	}
	if b.any() != true {
		t.Errorf("bitset with bits should report any")
	}
	b.clear(64)
	if b.test(64) {
		t.Errorf("bit 64 not cleared")
	}
}

func TestBitsetShift(t *testing.T) {
	b := newBitset(130)
	b.set(0)
	b.set(64)
	b.set(129)
	b.shiftDown()
	for _, i := range []int{63, 128} {
		if !b.test(i) {
			t.Errorf("bit %d expected after shift down", i)
		}
	}
	if b.test(0) || b.test(64) || b.test(129) {
		t.Errorf("stale bits after shift down")
	}

	u := newBitset(130)
	u.set(63)
	u.set(129)
	u.shiftUp()
	if !u.test(64) {
		t.Errorf("bit 64 expected after shift up")
	}
	if u.test(129) || u.test(63) {
		t.Errorf("stale bits after shift up")
	}
	// Shifting past the width must not leak into the padding words.
	if u.any() && u.findFirst() != 64 {
		t.Errorf("unexpected bits after shift up: first is %d", u.findFirst())
	}
}

func TestBitsetFind(t *testing.T) {
	b := newBitset(200)
	if b.findFirst() != -1 {
		t.Errorf("empty bitset should have no first bit")
	}
	for _, i := range []int{3, 64, 65, 199} {
		b.set(i)
	}
	want := []int{3, 64, 65, 199}
	got := []int{}
	for i := b.findFirst(); i >= 0; i = b.findNext(i) {
		got = append(got, i)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBitsetSubsetEqual(t *testing.T) {
	a := newBitset(100)
	b := newBitset(100)
	a.set(10)
	a.set(70)
	b.set(10)
	b.set(70)
	b.set(99)
	if !a.subsetOf(b) {
		t.Errorf("a should be a subset of b")
	}
	if b.subsetOf(a) {
		t.Errorf("b should not be a subset of a")
	}
	if a.equal(b) {
		t.Errorf("a and b differ")
	}
	a.set(99)
	if !a.equal(b) {
		t.Errorf("a and b should now be equal")
	}
}

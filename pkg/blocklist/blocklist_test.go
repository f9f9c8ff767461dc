package blocklist

import "testing"

func TestBlockAndUnblock(t *testing.T) {
	b := New()
	if b.IsBlocked(1234) {
		t.Fatal("fresh blocklist should not block anything")
	}
	b.Block(1234)
	if !b.IsBlocked(1234) {
		t.Fatal("expected 1234 to be blocked")
	}
	b.Unblock(1234)
	if b.IsBlocked(1234) {
		t.Fatal("expected 1234 to no longer be blocked")
	}
}

func TestSetBlockedReplacesContents(t *testing.T) {
	b := New()
	b.Block(1)
	b.SetBlocked([]uint32{2, 3})
	if b.IsBlocked(1) {
		t.Fatal("SetBlocked should have cleared prior entries")
	}
	if !b.IsBlocked(2) || !b.IsBlocked(3) {
		t.Fatal("expected 2 and 3 to be blocked")
	}
	if b.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", b.Count())
	}
}

func TestClear(t *testing.T) {
	b := New()
	b.SetBlocked([]uint32{1, 2, 3})
	b.Clear()
	if b.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after Clear", b.Count())
	}
}

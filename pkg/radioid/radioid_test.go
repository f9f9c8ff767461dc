package radioid

import "testing"

func TestToRadioID(t *testing.T) {
	got := ToRadioID(0x0A0004D2)
	if got != 1234 {
		t.Errorf("ToRadioID() = %d, want 1234", got)
	}
}

func TestString(t *testing.T) {
	got := String(0x0A0004D2)
	want := "10.0.4.210"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

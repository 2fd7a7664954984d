package conceptual

import "testing"

func TestParseMMSI(t *testing.T) {
	m, err := ParseMMSI("219019887")
	if err != nil {
		t.Fatal(err)
	}
	if m != 219019887 {
		t.Errorf("got %d", m)
	}
	if string(m.Key()) != "219019887" {
		t.Errorf("key %s", m.Key())
	}
	if string(MMSI(42).Key()) != "000000042" {
		t.Errorf("key %s", MMSI(42).Key())
	}
	for _, bad := range []string{"", "abc", "-1", "0"} {
		if _, err := ParseMMSI(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

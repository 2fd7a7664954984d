package conceptual

import (
	"fmt"
	"strconv"
)

// MMSI is the nine-digit Maritime Mobile Service Identity of a vessel.
type MMSI int64

func (m MMSI) String() string {
	return strconv.FormatInt(int64(m), 10)
}

func (m MMSI) Empty() bool {
	return m == 0
}

// Key is the fixed-width form used for ordered keys in the score store.
func (m MMSI) Key() []byte {
	return []byte(fmt.Sprintf("%09d", int64(m)))
}

// ParseMMSI parses the decimal string form of an MMSI.
func ParseMMSI(s string) (MMSI, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse mmsi %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("parse mmsi %q: not positive", s)
	}
	return MMSI(v), nil
}

package vesseltrack

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// Encoding names the wire format of a trajectory payload.
type Encoding string

const (
	EncodingAuto    Encoding = ""
	EncodingWKB     Encoding = "wkb"
	EncodingEWKB    Encoding = "ewkb"
	EncodingHexWKB  Encoding = "hexwkb"
	EncodingHexEWKB Encoding = "hexewkb"
)

// ewkbFlags are the high bits PostGIS sets on the geometry type word
// for Z, M and SRID.
const ewkbFlags = 0xE0000000

// MinTrajectoryPoints is the fewest points of a valid path.
const MinTrajectoryPoints = 2

// ErrMalformedTrajectory is matched by every MalformedTrajectoryError.
var ErrMalformedTrajectory = errors.New("malformed trajectory")

// MalformedTrajectoryError reports a payload that could not become a trajectory.
type MalformedTrajectoryError struct {
	Reason string
	Err    error
}

func (e *MalformedTrajectoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedTrajectory, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedTrajectory, e.Reason)
}

func (e *MalformedTrajectoryError) Unwrap() error {
	return e.Err
}

func (e *MalformedTrajectoryError) Is(target error) bool {
	return target == ErrMalformedTrajectory
}

func malformed(reason string, err error) error {
	return &MalformedTrajectoryError{Reason: reason, Err: err}
}

// ParseEncoding accepts the encoding tags used on the wire; empty means auto.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case EncodingAuto, EncodingWKB, EncodingEWKB, EncodingHexWKB, EncodingHexEWKB:
		return e, nil
	case "auto":
		return EncodingAuto, nil
	}
	return EncodingAuto, fmt.Errorf("unknown trajectory encoding %q", s)
}

// Decode parses payload as a LineString with an M ordinate.
func Decode(payload []byte, enc Encoding) (Trajectory, error) {
	g, err := decodeGeometry(payload, enc)
	if err != nil {
		return nil, err
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, malformed(fmt.Sprintf("geometry is %T, want a single LineString", g), nil)
	}
	n := ls.NumCoords()
	if n < MinTrajectoryPoints {
		return nil, malformed(fmt.Sprintf("degenerate LineString with %d points", n), nil)
	}
	mi := ls.Layout().MIndex()
	if mi < 0 {
		return nil, malformed(fmt.Sprintf("layout %v has no measure ordinate for time", ls.Layout()), nil)
	}
	out := make(Trajectory, n)
	for i := 0; i < n; i++ {
		c := ls.Coord(i)
		out[i] = Point{X: c[0], Y: c[1], T: c[mi]}
	}
	return out, nil
}

func decodeGeometry(payload []byte, enc Encoding) (geom.T, error) {
	if len(payload) == 0 {
		return nil, malformed("empty payload", nil)
	}
	if enc == EncodingAuto {
		enc = sniff(payload)
	}
	switch enc {
	case EncodingHexWKB, EncodingHexEWKB:
		raw, err := hex.DecodeString(strings.TrimSpace(string(payload)))
		if err != nil {
			return nil, malformed("hex", err)
		}
		payload = raw
		if enc == EncodingHexWKB {
			enc = EncodingWKB
		} else {
			enc = EncodingEWKB
		}
	}

	var g geom.T
	var err error
	switch enc {
	case EncodingWKB:
		g, err = wkb.Unmarshal(payload)
	case EncodingEWKB:
		g, err = ewkb.Unmarshal(payload)
	default:
		return nil, malformed(fmt.Sprintf("unsupported encoding %q", enc), nil)
	}
	if err != nil {
		return nil, malformed(string(enc), err)
	}
	return g, nil
}

// sniff guesses the encoding of payload: hex text or binary,
// then EWKB if the type word carries EWKB flag bits.
func sniff(payload []byte) Encoding {
	hexed := isHex(payload)
	raw := payload
	if hexed {
		b, err := hex.DecodeString(strings.TrimSpace(string(payload)))
		if err != nil {
			return EncodingHexWKB
		}
		raw = b
	}
	ewkbed := false
	if len(raw) >= 5 {
		var order binary.ByteOrder = binary.LittleEndian
		if raw[0] == 0 {
			order = binary.BigEndian
		}
		ewkbed = order.Uint32(raw[1:5])&ewkbFlags != 0
	}
	switch {
	case hexed && ewkbed:
		return EncodingHexEWKB
	case hexed:
		return EncodingHexWKB
	case ewkbed:
		return EncodingEWKB
	}
	return EncodingWKB
}

// isHex is true for text that can only be a hex dump: a binary WKB
// payload starts with a 0x00 or 0x01 byte order marker, never '0'.
func isHex(b []byte) bool {
	s := strings.TrimSpace(string(b))
	if len(s) < 2 || len(s)%2 != 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Encode writes t as a little endian LineString with an M ordinate.
// EncodingAuto writes ISO WKB.
func Encode(t Trajectory, enc Encoding) ([]byte, error) {
	ls := geom.NewLineString(geom.XYM)
	coords := make([]geom.Coord, len(t))
	for i, p := range t {
		coords[i] = geom.Coord{p.X, p.Y, p.T}
	}
	if _, err := ls.SetCoords(coords); err != nil {
		return nil, err
	}

	var b []byte
	var err error
	switch enc {
	case EncodingAuto, EncodingWKB, EncodingHexWKB:
		b, err = wkb.Marshal(ls, binary.LittleEndian)
	case EncodingEWKB, EncodingHexEWKB:
		b, err = ewkb.Marshal(ls.SetSRID(4326), binary.LittleEndian)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
	if err != nil {
		return nil, err
	}
	if enc == EncodingHexWKB || enc == EncodingHexEWKB {
		return []byte(hex.EncodeToString(b)), nil
	}
	return b, nil
}

// Package aismsg models the self-reported AIS messages of a vessel.
package aismsg

import (
	"fmt"
	"math"
	"time"

	"github.com/rotblauer/aistrust/conceptual"
)

// Message is one self-reported AIS message.
// Pointer fields are optional; nil means the field was not reported,
// which is different from a reported zero.
type Message struct {
	ID        int64           `json:"id,omitempty"`
	MMSI      conceptual.MMSI `json:"mmsi"`
	Timestamp time.Time       `json:"timestamp"`

	// COG is course over ground in degrees, [0, 360).
	COG *float64 `json:"cog,omitempty"`
	// SOG is speed over ground in knots.
	SOG     *float64 `json:"sog,omitempty"`
	Heading *float64 `json:"heading,omitempty"`
	ROT     *float64 `json:"rot,omitempty"`

	NavStatus      *int       `json:"navigationalStatusId,omitempty"`
	MobileType     *int       `json:"mobileTypeId,omitempty"`
	DataSourceType string     `json:"dataSourceType,omitempty"`
	Destination    string     `json:"destination,omitempty"`
	Draught        *float64   `json:"draught,omitempty"`
	CargoType      string     `json:"cargoType,omitempty"`
	ETA            *time.Time `json:"eta,omitempty"`
}

// Float returns a pointer to f, for building messages by hand.
func Float(f float64) *float64 {
	return &f
}

// HasCOG is true when a finite course was reported.
func (m Message) HasCOG() bool {
	return m.COG != nil && !math.IsNaN(*m.COG) && !math.IsInf(*m.COG, 0)
}

// HasSOG is true when a finite speed was reported.
func (m Message) HasSOG() bool {
	return m.SOG != nil && !math.IsNaN(*m.SOG) && !math.IsInf(*m.SOG, 0)
}

// Validate checks the fields a scorer relies on.
func (m Message) Validate() error {
	if m.HasCOG() && (*m.COG < 0 || *m.COG >= 360) {
		return fmt.Errorf("invalid cog %v", *m.COG)
	}
	if m.HasSOG() && *m.SOG < 0 {
		return fmt.Errorf("invalid sog %v", *m.SOG)
	}
	return nil
}

// Clone returns a deep copy; no pointer is shared with m.
func (m Message) Clone() Message {
	out := m
	out.COG = cloneFloat(m.COG)
	out.SOG = cloneFloat(m.SOG)
	out.Heading = cloneFloat(m.Heading)
	out.ROT = cloneFloat(m.ROT)
	out.Draught = cloneFloat(m.Draught)
	if m.NavStatus != nil {
		v := *m.NavStatus
		out.NavStatus = &v
	}
	if m.MobileType != nil {
		v := *m.MobileType
		out.MobileType = &v
	}
	if m.ETA != nil {
		v := *m.ETA
		out.ETA = &v
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// StripCOG returns copies of msgs without course.
func StripCOG(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
		out[i].COG = nil
	}
	return out
}

// StripSOG returns copies of msgs without speed.
func StripSOG(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
		out[i].SOG = nil
	}
	return out
}

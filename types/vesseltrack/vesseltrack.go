// Package vesseltrack builds the unit of analysis: one vessel's reported
// messages together with its independently observed trajectory.
package vesseltrack

import (
	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/types/aismsg"
)

// VesselTrack pairs a vessel's reported messages with its observed trajectory.
// It is built once per request; analyzers that want to modify it work on a Clone.
type VesselTrack struct {
	MMSI       conceptual.MMSI  `json:"mmsi"`
	Messages   []aismsg.Message `json:"messages"`
	Trajectory Trajectory       `json:"trajectory"`
}

// New decodes the trajectory payload and assembles a track.
// It fails with a *MalformedTrajectoryError if the payload is not a single path
// of at least MinTrajectoryPoints points.
func New(mmsi conceptual.MMSI, messages []aismsg.Message, payload []byte, enc Encoding) (*VesselTrack, error) {
	traj, err := Decode(payload, enc)
	if err != nil {
		return nil, err
	}
	return FromTrajectory(mmsi, messages, traj), nil
}

// FromTrajectory assembles a track from an already decoded trajectory.
func FromTrajectory(mmsi conceptual.MMSI, messages []aismsg.Message, traj Trajectory) *VesselTrack {
	if messages == nil {
		messages = []aismsg.Message{}
	}
	if traj == nil {
		traj = Trajectory{}
	}
	return &VesselTrack{
		MMSI:       mmsi,
		Messages:   messages,
		Trajectory: traj,
	}
}

// Clone returns a deep copy sharing no memory with vt.
func (vt *VesselTrack) Clone() *VesselTrack {
	msgs := make([]aismsg.Message, len(vt.Messages))
	for i, m := range vt.Messages {
		msgs[i] = m.Clone()
	}
	return &VesselTrack{
		MMSI:       vt.MMSI,
		Messages:   msgs,
		Trajectory: vt.Trajectory.Clone(),
	}
}

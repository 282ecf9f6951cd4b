package hybrid

// StageKind classifies one entry of a discretized grid: a normal
// fixed-contact interval, one half of an interval split by a discrete
// event, or the zero-width impulse stage itself.
type StageKind int

const (
	Normal StageKind = iota
	PreImpulse
	Impulse
	PostImpulse
	PreLift
	PostLift
	Terminal
)

func (k StageKind) String() string {
	switch k {
	case PreImpulse:
		return "pre-impulse"
	case Impulse:
		return "impulse"
	case PostImpulse:
		return "post-impulse"
	case PreLift:
		return "pre-lift"
	case PostLift:
		return "post-lift"
	case Terminal:
		return "terminal"
	default:
		return "normal"
	}
}

// GridInfo describes one time stage of the discretized horizon, §4.1.
// grid_info.hpp is referenced by time_discretization.hpp but is not
// itself present in this pack's pruned original_source/ copy, so this
// struct's field set is reconstructed from that header's call sites
// rather than ported directly.
type GridInfo struct {
	T            float64 // absolute time at the start of this stage
	Dt           float64 // width of this stage (zero for Impulse/Terminal)
	Phase        int     // contact phase this stage belongs to
	Stage        int     // index into the combined stage array
	Kind         StageKind
	EventIndex   int // impulse index among impulse events, or lift index among lift events; -1 if not an event-adjacent stage
	IsSTOEnabled bool
}

package hybrid

import (
	"fmt"
	"math"
)

// DiscretizationMethod selects how TimeDiscretization keeps the grid in
// sync with the ContactSequence, §4.1.
type DiscretizationMethod int

const (
	// GridBased re-derives grid spacing from scratch on every Discretize
	// call, letting the number of grids per contact phase change freely.
	GridBased DiscretizationMethod = iota
	// PhaseBased rebuilds the equal-width grid on every Discretize call,
	// as GridBased does (see retime), and is the method MeshRefinement
	// acts on. The number of intervals per contact phase is not held
	// fixed.
	PhaseBased
)

const minStageWidth = 1e-9

// TimeDiscretization discretizes a finite horizon [t0, t0+T] into a
// sequence of time stages, splitting any interval a discrete contact
// event falls into, §4.1. Grounded on
// original_source/include/robotoc/hybrid/time_discretization.hpp.
type TimeDiscretization struct {
	t0     float64
	T      float64
	nIdeal int
	method DiscretizationMethod
	grids  []GridInfo
	sto    bool
}

// New builds a TimeDiscretization over horizon length T split into
// nIdeal equal-width intervals before any event splitting is applied.
func New(T float64, nIdeal int) *TimeDiscretization {
	return &TimeDiscretization{T: T, nIdeal: nIdeal, method: GridBased}
}

// SetDiscretizationMethod sets GridBased or PhaseBased.
func (d *TimeDiscretization) SetDiscretizationMethod(m DiscretizationMethod) {
	d.method = m
}

// EnableSTO marks every non-terminal, non-impulse stage as switching-time-
// optimization enabled (the event times themselves become decision
// variables), §4.4/§6.
func (d *TimeDiscretization) EnableSTO(enabled bool) { d.sto = enabled }

// Discretize rebuilds the grid for horizon start t against cs from the
// ideal equal-width grid. With PhaseBased and an unchanged number of
// contact phases it goes through retime, which rebuilds the same way.
func (d *TimeDiscretization) Discretize(cs *ContactSequence, t float64) error {
	if d.method == PhaseBased && len(d.grids) > 0 {
		if d.numPhasesOf(d.grids) == cs.NumContactPhases() {
			return d.retime(cs, t)
		}
	}
	return d.rebuild(cs, t)
}

func (d *TimeDiscretization) numPhasesOf(grids []GridInfo) int {
	max := 0
	for _, g := range grids {
		if g.Phase > max {
			max = g.Phase
		}
	}
	return max + 1
}

// retime is the PhaseBased path taken when the number of contact phases
// is unchanged. It rebuilds the grid from the ideal equal-width spacing
// at horizon start t; the existing stage structure is not kept.
func (d *TimeDiscretization) retime(cs *ContactSequence, t float64) error {
	return d.rebuild(cs, t)
}

// rebuild recomputes the grid from an ideal equal-width spacing, splitting
// whichever interval each event falls into.
func (d *TimeDiscretization) rebuild(cs *ContactSequence, t float64) error {
	if d.nIdeal <= 0 || d.T <= 0 {
		return fmt.Errorf("hybrid: invalid horizon T=%f N=%d", d.T, d.nIdeal)
	}
	d.t0 = t
	dt := d.T / float64(d.nIdeal)

	grids := make([]GridInfo, 0, d.nIdeal+2*cs.NumEvents()+1)
	phase := 0
	impulseIdx, liftIdx := 0, 0
	eventCursor := 0
	events := cs.Events()

	for i := 0; i < d.nIdeal; i++ {
		intervalStart := t + float64(i)*dt
		intervalEnd := intervalStart + dt

		if eventCursor < len(events) && events[eventCursor].Time > intervalStart && events[eventCursor].Time < intervalEnd {
			ev := events[eventCursor]
			dtPre := ev.Time - intervalStart
			dtPost := intervalEnd - ev.Time
			if dtPre < minStageWidth || dtPost < minStageWidth {
				return fmt.Errorf("hybrid: event at t=%f too close to grid boundary for tractable discretization", ev.Time)
			}

			switch ev.Kind {
			case ImpulseEvent:
				grids = append(grids, GridInfo{T: intervalStart, Dt: dtPre, Phase: phase, Kind: PreImpulse, EventIndex: impulseIdx, IsSTOEnabled: d.sto})
				grids = append(grids, GridInfo{T: ev.Time, Dt: 0, Phase: phase, Kind: Impulse, EventIndex: impulseIdx})
				phase++
				grids = append(grids, GridInfo{T: ev.Time, Dt: dtPost, Phase: phase, Kind: PostImpulse, EventIndex: impulseIdx, IsSTOEnabled: d.sto})
				impulseIdx++
			case LiftEvent:
				grids = append(grids, GridInfo{T: intervalStart, Dt: dtPre, Phase: phase, Kind: PreLift, EventIndex: liftIdx, IsSTOEnabled: d.sto})
				phase++
				grids = append(grids, GridInfo{T: ev.Time, Dt: dtPost, Phase: phase, Kind: PostLift, EventIndex: liftIdx, IsSTOEnabled: d.sto})
				liftIdx++
			}
			eventCursor++
		} else {
			grids = append(grids, GridInfo{T: intervalStart, Dt: dt, Phase: phase, Kind: Normal, EventIndex: -1, IsSTOEnabled: d.sto})
		}
	}
	grids = append(grids, GridInfo{T: t + d.T, Dt: 0, Phase: phase, Kind: Terminal, EventIndex: -1})

	for i := range grids {
		grids[i].Stage = i
	}
	d.grids = grids
	return nil
}

// MeshRefinement scales the ideal interval count by (0.5 + phase 0's
// share of the summed absolute phase residuals), rounded and at least 1,
// and rebuilds the equal-width grid. The total number of stages changes
// with it, and grid points are not moved between phases. It is a no-op
// under GridBased (§4.1, "this function does nothing if the
// discretization method is GridBased") or when the residuals sum to
// (nearly) zero.
func (d *TimeDiscretization) MeshRefinement(cs *ContactSequence, t float64, phaseResidual []float64) error {
	if d.method == GridBased {
		return nil
	}
	if len(d.grids) == 0 {
		return d.rebuild(cs, t)
	}
	total := 0.0
	for _, r := range phaseResidual {
		total += math.Abs(r)
	}
	if total < 1e-12 {
		return nil
	}
	// scale the ideal grid count by phase 0's residual share, then rebuild
	// the ideal grid with that count.
	sharePhase0 := math.Abs(phaseResidual[0]) / total
	newIdeal := int(math.Round(float64(d.nIdeal) * (0.5 + sharePhase0)))
	if newIdeal < 1 {
		newIdeal = 1
	}
	d.nIdeal = newIdeal
	return d.rebuild(cs, t)
}

// N returns the number of non-terminal time stages on the horizon,
// including stages created by splitting an interval around an event.
func (d *TimeDiscretization) N() int {
	n := 0
	for _, g := range d.grids {
		if g.Kind != Terminal {
			n++
		}
	}
	return n
}

// NImpulse returns E_imp, the number of impulse events.
func (d *TimeDiscretization) NImpulse() int {
	n := 0
	for _, g := range d.grids {
		if g.Kind == Impulse {
			n++
		}
	}
	return n
}

// NLift returns E_lift, the number of lift events.
func (d *TimeDiscretization) NLift() int {
	n := 0
	for _, g := range d.grids {
		if g.Kind == PostLift {
			n++
		}
	}
	return n
}

// NIdeal returns the ideal number of discretization grids before event
// splitting.
func (d *TimeDiscretization) NIdeal() int { return d.nIdeal }

// NumContactPhases returns the number of contiguous contact phases.
func (d *TimeDiscretization) NumContactPhases() int {
	return d.numPhasesOf(d.grids)
}

// NumDiscreteEvents returns NImpulse()+NLift().
func (d *TimeDiscretization) NumDiscreteEvents() int {
	return d.NImpulse() + d.NLift()
}

// Grid returns the i-th stage in the combined array (0-indexed, includes
// impulse and terminal stages).
func (d *TimeDiscretization) Grid(i int) GridInfo { return d.grids[i] }

// NumGrids returns the total combined stage count, including impulse and
// terminal stages — this is the loop bound for §5's parallel linearize
// phase ("[0..N + 2·E_imp + E_lift]").
func (d *TimeDiscretization) NumGrids() int { return len(d.grids) }

// ContactPhase returns the contact phase of time stage i.
func (d *TimeDiscretization) ContactPhase(stage int) int { return d.grids[stage].Phase }

// IsTimeStageBeforeImpulse reports whether stage i is immediately before
// an impulse event.
func (d *TimeDiscretization) IsTimeStageBeforeImpulse(stage int) bool {
	return d.grids[stage].Kind == PreImpulse
}

// IsTimeStageAfterImpulse reports whether stage i is immediately after an
// impulse event.
func (d *TimeDiscretization) IsTimeStageAfterImpulse(stage int) bool {
	return d.grids[stage].Kind == PostImpulse
}

// IsTimeStageBeforeLift reports whether stage i is immediately before a
// lift event.
func (d *TimeDiscretization) IsTimeStageBeforeLift(stage int) bool {
	return d.grids[stage].Kind == PreLift
}

// IsTimeStageAfterLift reports whether stage i is immediately after a
// lift event.
func (d *TimeDiscretization) IsTimeStageAfterLift(stage int) bool {
	return d.grids[stage].Kind == PostLift
}

// T0 returns the initial time of the horizon.
func (d *TimeDiscretization) T0() float64 { return d.t0 }

// Tf returns the final time of the horizon.
func (d *TimeDiscretization) Tf() float64 { return d.t0 + d.T }

// IsFormulationTractable reports whether every stage has strictly
// positive width where required (no event collides with a grid boundary
// or another event), the condition this package's Discretize already
// enforces by returning an error — exposed separately so a caller can
// re-check after SetEventTime moves an event during STO.
func (d *TimeDiscretization) IsFormulationTractable() bool {
	for _, g := range d.grids {
		if g.Kind == Impulse || g.Kind == Terminal {
			continue
		}
		if g.Dt < minStageWidth {
			return false
		}
	}
	return true
}

// Package contactstatus tracks which contacts are active at a grid point
// and how many scalars that activation costs in the force/multiplier
// stacks, §3 ("dim(f[i]) = 3 · |active contacts at phase(i)|").
package contactstatus

import "fmt"

// ContactType distinguishes a 3-dof point-foot contact from a 6-dof
// surface contact, following original_source's ContactType enum
// (robot/impulse_status.hpp's constructor takes a []ContactType).
type ContactType int

const (
	PointContact ContactType = iota
	SurfaceContact
)

// Dim returns the force-vector dimension of one contact of this type.
func (t ContactType) Dim() int {
	switch t {
	case SurfaceContact:
		return 6
	default:
		return 3
	}
}

// ContactStatus records, for the robot's full set of candidate contacts,
// which ones are currently active and their ordering in the force/λ
// stacks.
type ContactStatus struct {
	names  []string
	types  []ContactType
	active []bool
}

// New builds a ContactStatus for the given candidate contact frames, all
// inactive initially.
func New(names []string, types []ContactType) *ContactStatus {
	if len(names) != len(types) {
		panic("contactstatus: names/types length mismatch")
	}
	return &ContactStatus{
		names:  append([]string{}, names...),
		types:  append([]ContactType{}, types...),
		active: make([]bool, len(names)),
	}
}

// Clone returns an independent copy.
func (c *ContactStatus) Clone() *ContactStatus {
	cp := &ContactStatus{
		names:  append([]string{}, c.names...),
		types:  append([]ContactType{}, c.types...),
		active: append([]bool{}, c.active...),
	}
	return cp
}

// MaxContacts returns the number of candidate contact frames.
func (c *ContactStatus) MaxContacts() int { return len(c.names) }

// SetActive activates or deactivates the contact by index.
func (c *ContactStatus) SetActive(i int, active bool) error {
	if i < 0 || i >= len(c.active) {
		return fmt.Errorf("contactstatus: index %d out of range [0,%d)", i, len(c.active))
	}
	c.active[i] = active
	return nil
}

// Activate sets every contact named among names active and the rest
// inactive; this is the usual entry point for a contact-sequence event.
func (c *ContactStatus) Activate(names ...string) error {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for i, n := range c.names {
		c.active[i] = want[n]
		delete(want, n)
	}
	for n := range want {
		return fmt.Errorf("contactstatus: unknown contact frame %q", n)
	}
	return nil
}

// IsActive reports whether contact i is currently active.
func (c *ContactStatus) IsActive(i int) bool { return c.active[i] }

// ActiveIndices returns, in frame order, the indices of the active
// contacts — this ordering fixes the layout of the force stack.
func (c *ContactStatus) ActiveIndices() []int {
	idx := make([]int, 0, len(c.active))
	for i, a := range c.active {
		if a {
			idx = append(idx, i)
		}
	}
	return idx
}

// NumActive returns the number of active contacts.
func (c *ContactStatus) NumActive() int {
	n := 0
	for _, a := range c.active {
		if a {
			n++
		}
	}
	return n
}

// Dimf returns dim(f): the total force-stack dimension for the active
// contact set, §3 invariant "dim(f[i]) = 3·|active contacts at phase(i)|"
// generalized to mixed point/surface contacts.
func (c *ContactStatus) Dimf() int {
	d := 0
	for i, a := range c.active {
		if a {
			d += c.types[i].Dim()
		}
	}
	return d
}

// Equal reports whether two statuses activate exactly the same contacts.
func (c *ContactStatus) Equal(other *ContactStatus) bool {
	if len(c.active) != len(other.active) {
		return false
	}
	for i := range c.active {
		if c.active[i] != other.active[i] {
			return false
		}
	}
	return true
}

// Name returns the frame name of contact i.
func (c *ContactStatus) Name(i int) string { return c.names[i] }

// ImpulseStatus is a wrapper of ContactStatus to treat impulses, following
// original_source/include/robotoc/robot/impulse_status.hpp's own
// description verbatim ("Wrapper of ContactStatus to treat impulses").
type ImpulseStatus struct {
	*ContactStatus
	ImpulseModeID int
}

// NewImpulseStatus wraps a ContactStatus as the activation set effective
// immediately after an impulse event.
func NewImpulseStatus(cs *ContactStatus, impulseModeID int) *ImpulseStatus {
	return &ImpulseStatus{ContactStatus: cs, ImpulseModeID: impulseModeID}
}

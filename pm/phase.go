package pm

// Phase is one step of the suspend/resume state machine.
//
//go:generate stringer -type=Phase
type Phase int

const (
	Running Phase = iota
	ClocksGated
	PMUProgrammed
	IOConfigured
	CoreDomainSaved
	LogicDomainSaved
	PMUSubdomainSaved
	CPURetired
	PMUSubdomainRestored
	LogicDomainRestored
	CoreDomainRestored
	IORestored
	PMUCleared
	ClocksUngated
)

var pairs = [...][2]Phase{
	{ClocksGated, ClocksUngated},
	{PMUProgrammed, PMUCleared},
	{IOConfigured, IORestored},
	{CoreDomainSaved, CoreDomainRestored},
	{LogicDomainSaved, LogicDomainRestored},
	{PMUSubdomainSaved, PMUSubdomainRestored},
}

var inverse = make(map[Phase]Phase, 2*len(pairs))

func init() {
	for _, p := range pairs {
		inverse[p[0]] = p[1]
		inverse[p[1]] = p[0]
	}
}

// Inverse returns the phase that undoes p. Running and CPURetired are their
// own inverse.
func (p Phase) Inverse() Phase {
	if q, ok := inverse[p]; ok {
		return q
	}

	return p
}

// Suspending reports whether p is on the way down.
func (p Phase) Suspending() bool {
	return p > Running && p < CPURetired
}

// checkpoint is the character emitted on the debug port once a phase (or
// the slot of a skipped conditional phase) completes. A resume phase emits
// the character of the phase it undoes.
var checkpoint = map[Phase]byte{
	ClocksGated:       '0',
	PMUProgrammed:     '1',
	IOConfigured:      '2',
	CoreDomainSaved:   '3',
	LogicDomainSaved:  '4',
	PMUSubdomainSaved: '5',
	CPURetired:        '6',
}

// Checkpoint returns the debug port character of p, or 0 for Running.
func (p Phase) Checkpoint() byte {
	if p.Suspending() || p == CPURetired {
		return checkpoint[p]
	}

	return checkpoint[p.Inverse()]
}

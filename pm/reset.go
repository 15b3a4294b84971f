package pm

// emergencyReset is taken when a wake raced the low-power entry and the CPU
// fell through it. The PMU state is indeterminate, so the whole chip is
// reset from the first global soft reset.
func (c *Context) emergencyReset() {
	c.cru.Write32(CRUGlbRstCon, CRUGlbRstValue)
	c.PMU.ReleaseResetHolds()
	c.cru.Write32(CRUGlbSrstFst, CRUGlbSrstFstV)
	c.cpu.Halt()
}

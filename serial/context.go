package serial

// Context is the register state the debug UART loses when its power domain
// goes down.
type Context struct {
	DLL uint32
	DLH uint32
	IER uint32
	LCR uint32
	MCR uint32
}

// Save captures the UART configuration, including the divisor latch.
func (p *Port) Save(ctx *Context) {
	ctx.LCR = p.base.Read32(RegLCR)
	ctx.MCR = p.base.Read32(RegMCR)

	if !p.dlab() {
		ctx.IER = p.base.Read32(RegIER)
	}

	p.base.Write32(RegLCR, ctx.LCR|LCRDLAB)
	ctx.DLL = p.base.Read32(RegTHR)
	ctx.DLH = p.base.Read32(RegIER)
	p.base.Write32(RegLCR, ctx.LCR)
}

// Restore replays a saved configuration. The divisor goes in first, then
// line control, interrupts, FIFO and modem control.
func (p *Port) Restore(ctx *Context) {
	p.base.Write32(RegLCR, ctx.LCR|LCRDLAB)
	p.base.Write32(RegTHR, ctx.DLL)
	p.base.Write32(RegIER, ctx.DLH)
	p.base.Write32(RegLCR, ctx.LCR&^LCRDLAB)
	p.base.Write32(RegIER, ctx.IER)
	p.base.Write32(RegFCR, FCRFIFOEnable)
	p.base.Write32(RegMCR, ctx.MCR)
}

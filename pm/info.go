package pm

import (
	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/pmu"
)

var modeLines = []struct {
	flag config.Mode
	line string
}{
	{config.ArmPd, "armpd"},
	{config.ArmOff, "armoff"},
	{config.ArmOffLogOff, "logoff"},
	{config.ArmOffPmuOff, "pmuoff"},
	{config.PmuHWPllsPd, "hw_plls_pd"},
	{config.PmuAlive32k, "pmualive_32k"},
	{config.PmuDisOsc, "dis_osc"},
	{config.Ext32k, "32k ext"},
	{config.TimeoutWkup, "timeout wkup"},
	{config.PmuDbg, "pmu debug"},
	{config.LpPr, "LP_PR"},
}

var wakeLines = []struct {
	bit  uint32
	line string
}{
	{pmu.WakeupSDMMC0, "SDMMC wakeup"},
	{pmu.WakeupSDIO, "SDIO wakeup"},
	{pmu.WakeupUSBDev, "USBDEV wakeup"},
	{pmu.WakeupUART0, "UART0 wakeup"},
	{pmu.WakeupPWM0, "PWM0 wakeup"},
	{pmu.WakeupTimer, "TIMER wakeup"},
	{pmu.WakeupHPTimer, "HPTIMER wakeup"},
	{pmu.WakeupSysInt, "SYS_INT wakeup"},
	{pmu.WakeupAOV, "AOV wakeup"},
	{pmu.WakeupTimeout, "TIMEOUT wakeup"},
}

func (c *Context) printEnterInfo() {
	if !c.cfg.Debug {
		return
	}

	p := c.UART

	p.PutString("enter:")
	p.PutHex(uint32(c.cfg.Mode))
	p.PutString(", ")
	p.PutHex(uint32(c.cfg.Wake))
	p.PutString(", ")
	p.PutDec(c.cycles)
	p.PutChar('\n')

	for _, l := range modeLines {
		if c.cfg.Mode.Has(l.flag) {
			p.PutString(l.line + "\n")
		}
	}
}

func (c *Context) printGPIOIntRegs() {
	if !c.cfg.Debug {
		return
	}

	p := c.UART

	p.PutString("GPIO0: ")

	for i, v := range c.GPIO0.IntRegs() {
		if i > 0 {
			p.PutChar(' ')
		}

		p.PutHex(v)
	}

	p.PutChar('\n')
}

func (c *Context) printWakeSource() {
	if !c.cfg.Debug {
		return
	}

	p := c.UART
	st := c.PMU.WakeStatus

	p.PutString("wake up status:")
	p.PutHex(st)
	p.PutChar('\n')

	if st != 0 {
		p.PutString("wake up information:\n")
	}

	if st&(1<<pmu.WakeupGPIO) != 0 {
		p.PutString("GPIO0 wakeup:")
		p.PutHex(c.PMU.GPIO0Status)
		p.PutChar('\n')
	}

	for _, l := range wakeLines {
		if st&(1<<l.bit) != 0 {
			p.PutString(l.line + "\n")
		}
	}

	p.PutChar('\n')
}

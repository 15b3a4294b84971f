package pmu

// PMU register offsets. The PMU0 bank is always on, PMU1 holds the sleep
// FSM and PMU2 the cluster and bus controls.
const (
	PMU0PwrCon    = 0x0000
	PMU0InfoTxCon = 0x0010

	PMU1PwrCon          = 0x4000
	PMU1WakeupIntCon    = 0x4008
	PMU1WakeupIntSt     = 0x400c
	PMU1IntMaskCon      = 0x4018
	PMU1WakeupTimeout   = 0x401c
	PMU1PLLPdCon        = 0x4020
	PMU1DDRPwrCon       = 0x4024
	PMU1CRUPwrCon0      = 0x4028
	PMU1CRUPwrCon1      = 0x402c
	PMU1OscStableCnt    = 0x4030
	PMU1PMICStableCnt   = 0x4034
	PMU1SleepCnt        = 0x4038
	PMU1WakeupRstClrCnt = 0x403c
	PMU1PLLLockCnt      = 0x4040
	PMU1PWMSwitchCnt    = 0x4044

	PMU2BusIdleCon     = 0x8000
	PMU2SCUPwrCon      = 0x8004
	PMU2ClusterIdleCon = 0x8008
	PMU2CPUAutoPwrCon  = 0x800c
	PMU2SCUAutoPwrCon  = 0x8010
	PMU2NOCAutoCon     = 0x8014
	PMU2SCUStableCnt   = 0x8020
	PMU2SCUPwrUpCnt    = 0x8024
	PMU2SCUPwrDnCnt    = 0x8028
	PMU2SCUVolUpCnt    = 0x802c
	PMU2SCUVolDnCnt    = 0x8030
)

// PMU0_PWR_CON bits.
const (
	PwrMode0En    = 0
	PMU1PwrBypass = 1
	PMU1BusBypass = 2
	PMU1PwrGtEn   = 3
	PMU1BusIdleEn = 4
	PMU1BusAuto   = 5
)

// PMU1_PWR_CON bits.
const (
	PwrMode1En   = 0
	SCUBypass    = 1
	BusBypass    = 2
	DDRBypass    = 3
	PwrGtBypass  = 4
	CRUBypass    = 5
	PDPMU1Bypass = 6
	WFIBypass    = 7
	SlpCntEn     = 8
)

// PMU2_SCU_PWR_CON bits.
const (
	SCUL2Flush   = 0
	SCUL2Idle    = 1
	SCUPwrDn     = 2
	SCUPwrOff    = 3
	ClstCPUPd    = 4
	SCUVolGt     = 5
	ClstClkSrcGt = 6
)

// PMU2_BUS_IDLE_CON bits.
const (
	IdleReqMSCH = 0
	IdleReqDDRC = 1
	IdleReqPeri = 2
	IdleReqVEPU = 3
	IdleReqVI   = 4
	IdleReqCRU  = 5
)

// PMU1_CRU_PWR_CON0 bits.
const (
	WakeupRst     = 0
	InputClamp    = 1
	AliveOscEn    = 2
	PowerOff      = 3
	PWMSwitch     = 4
	GPIOIOE       = 5
	PWMSwitchIOut = 6
	OffIO         = 7
	Alive32k      = 8
	OscDis        = 9
	PWMClkGtPLL   = 10
	PWMClkGtOsc   = 11
)

// PMU1_DDR_PWR_CON bits.
const (
	DDRSrefC          = 0
	DDRSrefA          = 1
	DDRIORetOnEnter   = 2
	DDRIORetOnExit    = 3
	DDRIORstIOVEnter  = 4
	DDRIORstIOVExit   = 5
	DDRCtlAAutoGating = 6
	DDRCtlCAutoGating = 7
	DDRPhyAutoGating  = 8
	DDRIOHzEnter      = 9
	DDRIOHzExit       = 10
)

// PMU1_PLLPD_CON bits.
const (
	DPLLPd = 0
	GPLLPd = 1
)

// AutoIntMsk is the interrupt mask bit of the CPU and SCU auto power
// controls.
const AutoIntMsk = 2

// Wakeup interrupt bits, shared by the wakeup enable and status registers.
const (
	WakeupGPIO    = 0
	WakeupSDMMC0  = 1
	WakeupSDIO    = 2
	WakeupUSBDev  = 3
	WakeupUART0   = 4
	WakeupPWM0    = 5
	WakeupTimer   = 6
	WakeupHPTimer = 7
	WakeupSysInt  = 8
	WakeupAOV     = 9
	WakeupTimeout = 10
)

// PMUGRF register offsets.
const (
	PMUGRFSocCon0 = 0x000
	PMUGRFOsReg0  = 0x200
)

// PMUGRFSocCon returns the offset of PMUGRF_SOC_CON n.
func PMUGRFSocCon(n uint32) uint32 {
	return PMUGRFSocCon0 + n*4
}

// PMUGRFOsReg returns the offset of PMUGRF_OS_REG n.
func PMUGRFOsReg(n uint32) uint32 {
	return PMUGRFOsReg0 + n*4
}

// PMUSGRFSocCon returns the offset of PMUSGRF_SOC_CON n.
func PMUSGRFSocCon(n uint32) uint32 {
	return n * 4
}

// PMU0CRUClkSelCon returns the offset of PMU0CRU_CLKSEL_CON n.
func PMU0CRUClkSelCon(n uint32) uint32 {
	return 0x300 + n*4
}

// DDRGRFCon returns the offset of DDRGRF_CON n.
func DDRGRFCon(n uint32) uint32 {
	return n * 4
}

// DDR controller registers.
const (
	DDRCStat   = 0x04
	DDRCPwrCtl = 0x30

	DDRCOpModeMask   = 0x7
	DDRCOpModeNormal = 0x1
	DDRCStatTimeout  = 600000
)

// Reset hold patterns written into PMUGRF_SOC_CON4..6. The lpmcu keeps
// running.
const (
	RstHoldCon4     = 0xffff3fff
	RstHoldCon5     = 0x007f007e
	RstHoldCon6     = 0xffffffff
	RstHoldCon6Keep = 0xffff0000

	LpPrRstHoldCon4 = 0xffffffff
	LpPrRstHoldCon5 = 0x00ff00ff
	LpPrRstHoldCon6 = 0xffffffff
)

// Resume source selects, in PMUSGRF_SOC_CON1 bits 10..11.
const (
	ResumeFromBootROM = 0
	ResumeFromPMUSRAM = 2
)

// OS registers carrying the resume entry and the saved wakeup source.
const (
	OsRegResumeEntry = 9
	OsRegWakeSource  = 10
)

package hptimer

// Register offsets.
const (
	RegRevision        = 0x00
	RegCtrl            = 0x04
	RegIntEn           = 0x08
	RegT24GCD          = 0x0c
	RegT32GCD          = 0x10
	RegLoadCount0      = 0x14
	RegLoadCount1      = 0x18
	RegT24DeltaCount0  = 0x1c
	RegT24DeltaCount1  = 0x20
	RegCurr32KValue0   = 0x24
	RegCurr32KValue1   = 0x28
	RegCurrTimerValue0 = 0x2c
	RegCurrTimerValue1 = 0x30
	RegT24Begin0       = 0x34
	RegT24Begin1       = 0x38
	RegT32End0         = 0x3c
	RegT32End1         = 0x40
	RegBeginEndValid   = 0x44
	RegSyncReq         = 0x48
	RegIntrStatus      = 0x4c
	RegLoad32KCount0   = 0x5c
	RegLoad32KCount1   = 0x60
)

// Control register bit positions.
const (
	CtrlEn          = 0
	CtrlMode        = 1 // two bits
	CtrlCntMode     = 3
	CtrlAttkCntCtlr = 4
	CtrlExtraCntCtl = 5
	CtrlInitMode    = 6
)

// Begin/end valid latch bits.
const (
	ValidT24Begin = 0
	ValidT32End   = 1

	validBeginEnd = 1<<ValidT24Begin | 1<<ValidT32End
)

// Sync request bits.
const (
	ReqSWSync = 0
	ReqHWSync = 1
)

// IntID identifies an HPTimer interrupt.
type IntID uint32

const (
	IntReach      IntID = 0
	IntSync       IntID = 2
	Int32KReach   IntID = 3
	IntExtraReach IntID = 4
)

// SlowClockHz is the always-on reference frequency.
const SlowClockHz = 32768

// WaitMaxUs bounds every HPTimer handshake.
const WaitMaxUs = 1000000

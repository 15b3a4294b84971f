package pm

import (
	"fmt"

	"github.com/bobuhiro11/gorkpm/mmio"
)

// Device register window.
const (
	DevRegBase = 0x20000000
	DevRegSize = 0x400000
)

// Register block names.
const (
	PeriCRU  = "pericru"
	VencCRU  = "venccru"
	NPUCRU   = "npucru"
	VICRU    = "vicru"
	CoreCRU  = "corecru"
	CRU      = "cru"
	PMU0CRU  = "pmu0cru"
	PMU1CRU  = "pmu1cru"
	NPUGRF   = "npugrf"
	CoreGRF  = "coregrf"
	DDRC     = "ddrc"
	DDRGRF   = "ddrgrf"
	PeriGRF  = "perigrf"
	PMUGRF   = "pmugrf"
	IOC3     = "ioc3"
	IOC47    = "ioc47"
	IOC6     = "ioc6"
	IOC0     = "ioc0"
	IOC1     = "ioc1"
	GPIO0    = "gpio0"
	GPIO1    = "gpio1"
	GPIO2    = "gpio2"
	PeriSGRF = "perisgrf"
	PMUSGRF  = "pmusgrf"
	GICD     = "gicd"
	GICC     = "gicc"

	PVTPLLCore = "pvtpll_core"
	PVTPLLISP  = "pvtpll_isp"
	PVTPLLVepu = "pvtpll_vepu"
	PVTPLLNPU  = "pvtpll_npu"

	HPTimer = "hptimer"
	PMU     = "pmu"
	UART0   = "uart0"
	WDTNS   = "wdt_ns"
	WDTS    = "wdt_s"
	FWDDR   = "fw_ddr"
	PMUSRAM = "pmusram"
)

// NSTimer returns the name of non-secure timer channel i.
func NSTimer(i int) string {
	return fmt.Sprintf("nstimer%d", i)
}

// STimer returns the name of secure timer channel i.
func STimer(i int) string {
	return fmt.Sprintf("stimer%d", i)
}

// QoS returns the name of the QoS generator of master m.
func QoS(m string) string {
	return "qos_" + m
}

const (
	blockSize   = 0x10000
	qosSize     = 0x100
	timerSize   = 0x1000
	pmuSRAMSize = 0x2000

	nsTimers = 6
	sTimers  = 2

	pmuSRAMOffset = 0x240000
)

// PMUSRAMBase is the physical address of the PMU SRAM the resume code runs
// from.
const PMUSRAMBase = DevRegBase + pmuSRAMOffset

var blocks = []mmio.Resource{
	{Name: PeriCRU, Offset: 0x000000, Size: blockSize},
	{Name: VencCRU, Offset: 0x010000, Size: blockSize},
	{Name: NPUCRU, Offset: 0x020000, Size: blockSize},
	{Name: VICRU, Offset: 0x030000, Size: blockSize},
	{Name: CoreCRU, Offset: 0x040000, Size: blockSize},
	{Name: CRU, Offset: 0x060000, Size: blockSize},
	{Name: PMU0CRU, Offset: 0x070000, Size: blockSize},
	{Name: PMU1CRU, Offset: 0x080000, Size: blockSize},
	{Name: NPUGRF, Offset: 0x0a0000, Size: blockSize},
	{Name: CoreGRF, Offset: 0x0b0000, Size: blockSize},
	{Name: DDRC, Offset: 0x0c0000, Size: blockSize},
	{Name: DDRGRF, Offset: 0x0d0000, Size: blockSize},
	{Name: PeriGRF, Offset: 0x0e0000, Size: blockSize},
	{Name: PMUGRF, Offset: 0x0f0000, Size: blockSize},
	{Name: IOC3, Offset: 0x100000, Size: blockSize},
	{Name: IOC47, Offset: 0x110000, Size: blockSize},
	{Name: IOC6, Offset: 0x120000, Size: blockSize},
	{Name: IOC0, Offset: 0x130000, Size: blockSize},
	{Name: IOC1, Offset: 0x140000, Size: blockSize},
	{Name: GPIO0, Offset: 0x150000, Size: blockSize},
	{Name: GPIO1, Offset: 0x160000, Size: blockSize},
	{Name: GPIO2, Offset: 0x170000, Size: blockSize},
	{Name: PeriSGRF, Offset: 0x180000, Size: blockSize},
	{Name: PMUSGRF, Offset: 0x190000, Size: blockSize},
	{Name: GICD, Offset: 0x1a1000, Size: 0x1000},
	{Name: GICC, Offset: 0x1a2000, Size: 0x2000},
	{Name: PVTPLLCore, Offset: 0x1b0000, Size: 0x1000},
	{Name: PVTPLLISP, Offset: 0x1b1000, Size: 0x1000},
	{Name: PVTPLLVepu, Offset: 0x1b2000, Size: 0x1000},
	{Name: PVTPLLNPU, Offset: 0x1b3000, Size: 0x1000},
	{Name: HPTimer, Offset: 0x1c0000, Size: blockSize},
	{Name: PMU, Offset: 0x1d0000, Size: blockSize},
	{Name: UART0, Offset: 0x1e0000, Size: blockSize},
	{Name: WDTNS, Offset: 0x1f0000, Size: blockSize},
	{Name: WDTS, Offset: 0x200000, Size: blockSize},
	{Name: FWDDR, Offset: 0x230000, Size: blockSize},
	{Name: PMUSRAM, Offset: pmuSRAMOffset, Size: pmuSRAMSize},
}

var qosBlocks = []struct {
	master string
	offset uint64
}{
	{"cpu", 0x310000},
	{"crypto", 0x320000},
	{"dcf", 0x320100},
	{"decom", 0x320200},
	{"dma2ddr", 0x320300},
	{"mac", 0x320400},
	{"mcu", 0x320500},
	{"rga2e_rd", 0x320600},
	{"rga2e_wr", 0x320700},
	{"rkdma", 0x320800},
	{"sdmmc1", 0x320900},
	{"usb", 0x320a00},
	{"emmc", 0x330000},
	{"fspi", 0x330100},
	{"isp", 0x330200},
	{"sdmmc0", 0x330300},
	{"vicap", 0x330400},
	{"npu", 0x340000},
	{"rkvdec", 0x350000},
	{"fspi_pmu", 0x360000},
	{"lpmcu", 0x360100},
	{"spi2ahb", 0x360200},
}

// Resources returns the platform resource map of every block the suspend
// path touches.
func Resources() (*mmio.ResourceMap, error) {
	m := mmio.NewResourceMap(DevRegBase, DevRegSize)

	for _, r := range blocks {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}

	for i := 0; i < nsTimers; i++ {
		r := mmio.Resource{Name: NSTimer(i), Offset: 0x210000 + uint64(i)*timerSize, Size: timerSize}
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}

	for i := 0; i < sTimers; i++ {
		r := mmio.Resource{Name: STimer(i), Offset: 0x220000 + uint64(i)*timerSize, Size: timerSize}
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}

	for _, q := range qosBlocks {
		if err := m.Add(mmio.Resource{Name: QoS(q.master), Offset: q.offset, Size: qosSize}); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Gate register counts per CRU.
const (
	CRUGateCount     = 7
	PMU0CRUGateCount = 3
	PMU1CRUGateCount = 2
	PeriCRUGateCount = 12
	NPUCRUGateCount  = 1
	VencCRUGateCount = 1
	VICRUGateCount   = 3
	CoreCRUGateCount = 2
)

// Top CRU registers used outside the region lists.
const (
	CRUModeCon     = 0x280
	CRUGlbSrstFst  = 0xc08
	CRUGlbRstCon   = 0xc10
	CRUSlowMode    = 0x00030000
	CRUGlbRstValue = 0x000c000c
	CRUGlbSrstFstV = 0xfdb9
)

// Watchdog registers.
const (
	WDTCR      = 0x00
	WDTCRR     = 0x0c
	WDTCREn    = 0x1
	WDTKickVal = 0x76
)

package pm

import (
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/region"
)

const wmsk = mmio.FullUpperMask

// RegionSets are the per-domain register lists saved and restored around
// a sleep cycle. They are declared once at init.
type RegionSets struct {
	Core        *region.Set
	Logic       *region.Set
	PMU1        *region.Set
	PVTPLLCore  *region.Set
	PVTPLLLogic *region.Set
}

// All returns every set in declaration order.
func (s *RegionSets) All() []*region.Set {
	return []*region.Set{s.Core, s.Logic, s.PMU1, s.PVTPLLCore, s.PVTPLLLogic}
}

// qos is the priority/mode/bandwidth/saturation/extcontrol span of a QoS
// generator.
func qos(b mmio.Block) region.Region {
	return region.R(b, 0x08, 0x18, 4, 0)
}

// gpioBank is the port, direction, interrupt and debounce state of a
// logic-domain GPIO bank. The interrupt enables are listed separately so
// they come back last.
func gpioBank(b mmio.Block) []region.Region {
	return []region.Region{
		region.R(b, 0x000, 0x00c, 4, wmsk),
		region.R(b, 0x018, 0x044, 4, wmsk),
		region.R(b, 0x048, 0x048, 4, 0),
		region.R(b, 0x060, 0x064, 4, wmsk),
		region.R(b, 0x100, 0x108, 4, wmsk),
	}
}

// NewRegionSets declares the domain register lists over blocks, which must
// hold every block of Resources. A missing block surfaces as a validation
// error once the sets are carved into an arena.
func NewRegionSets(blocks map[string]mmio.Block) *RegionSets {
	b := func(name string) mmio.Block { return blocks[name] }

	core := []region.Region{
		region.R(b(CoreCRU), 0x300, 0x308, 4, wmsk),
		region.R(b(CoreCRU), 0x800, 0x804, 4, wmsk),
		region.R(b(CoreCRU), 0xa00, 0xa04, 4, wmsk),
		region.R(b(CoreCRU), 0xd00, 0xd00, 4, 0),
		region.R(b(CoreCRU), 0xd04, 0xd04, 4, wmsk),

		region.R(b(NPUCRU), 0x300, 0x308, 4, wmsk),
		region.R(b(NPUCRU), 0x800, 0x800, 4, wmsk),
		region.R(b(NPUCRU), 0xa00, 0xa00, 4, wmsk),

		region.R(b(CoreGRF), 0x000, 0x000, 4, wmsk),
		region.R(b(CoreGRF), 0x004, 0x004, 4, 0),

		region.R(b(NPUGRF), 0x000, 0x000, 4, 0),

		qos(b(QoS("cpu"))),
		qos(b(QoS("npu"))),
	}

	logic := []region.Region{
		region.R(b(FWDDR), 0x000, 0x01c, 4, 0),
		region.R(b(FWDDR), 0x040, 0x060, 4, 0),
		region.R(b(FWDDR), 0x0f0, 0x0f0, 4, 0),

		// CRU_MODE (0x280) is handled by the domain restore itself.
		region.R(b(CRU), 0x040, 0x044, 4, wmsk),
		region.R(b(CRU), 0x048, 0x048, 4, 0),
		region.R(b(CRU), 0x04c, 0x050, 4, wmsk),
		region.R(b(CRU), 0x060, 0x064, 4, wmsk),
		region.R(b(CRU), 0x068, 0x068, 4, 0),
		region.R(b(CRU), 0x06c, 0x070, 4, wmsk),
		region.R(b(CRU), 0x140, 0x1bc, 4, 0),
		region.R(b(CRU), 0x300, 0x308, 4, wmsk),
		region.R(b(CRU), 0x314, 0x314, 4, wmsk),
		region.R(b(CRU), 0x328, 0x330, 4, 0),
		region.R(b(CRU), 0x350, 0x350, 4, wmsk),
		region.R(b(CRU), 0x354, 0x354, 4, 0),
		region.R(b(CRU), 0x378, 0x3a4, 4, wmsk),
		region.R(b(CRU), 0x800, 0x818, 4, wmsk),
		region.R(b(CRU), 0xa00, 0xa00, 4, wmsk),
		region.R(b(CRU), 0xd00, 0xd10, 8, 0),
		region.R(b(CRU), 0xd04, 0xd14, 8, wmsk),
		region.R(b(CRU), 0xd18, 0xd20, 4, wmsk),
		region.R(b(CRU), 0xc00, 0xc00, 4, 0),
		region.R(b(CRU), 0xc10, 0xc10, 4, 0),
		region.R(b(CRU), 0xcc0, 0xcc0, 4, 0),

		region.R(b(PeriCRU), 0x300, 0x30c, 4, wmsk),
		region.R(b(PeriCRU), 0x800, 0x82c, 4, wmsk),
		region.R(b(PeriCRU), 0xa00, 0xa2c, 4, wmsk),
		region.R(b(PeriCRU), 0xc08, 0xc08, 4, wmsk),

		region.R(b(PeriGRF), 0x000, 0x00c, 4, wmsk),
		region.R(b(PeriGRF), 0x020, 0x034, 4, wmsk),
		region.R(b(PeriGRF), 0x050, 0x05c, 4, wmsk),
		region.R(b(PeriGRF), 0x070, 0x078, 4, wmsk),
		region.R(b(PeriGRF), 0x080, 0x090, 4, 0),
		region.R(b(PeriGRF), 0x0a0, 0x0a4, 4, wmsk),
		region.R(b(PeriGRF), 0x0b0, 0x0b4, 4, wmsk),
		region.R(b(PeriGRF), 0x100, 0x108, 4, wmsk),
		region.R(b(PeriGRF), 0x110, 0x11c, 4, 0),
		region.R(b(PeriGRF), 0x200, 0x210, 4, 0),
		region.R(b(PeriGRF), 0x214, 0x214, 4, wmsk),

		region.R(b(PeriSGRF), 0x008, 0x00c, 4, wmsk),
		region.R(b(PeriSGRF), 0x018, 0x018, 4, wmsk),
		region.R(b(PeriSGRF), 0x020, 0x03c, 4, wmsk),
		region.R(b(PeriSGRF), 0x080, 0x080, 4, 0),

		region.R(b(VICRU), 0x300, 0x300, 4, wmsk),
		region.R(b(VICRU), 0x800, 0x808, 4, wmsk),
		region.R(b(VICRU), 0xa00, 0xa04, 4, wmsk),
		region.R(b(VICRU), 0xc08, 0xc08, 4, wmsk),

		region.R(b(VencCRU), 0x300, 0x308, 4, wmsk),
		region.R(b(VencCRU), 0x800, 0x800, 4, wmsk),
		region.R(b(VencCRU), 0xa00, 0xa00, 4, wmsk),
	}

	logic = append(logic, gpioBank(b(GPIO1))...)
	logic = append(logic, gpioBank(b(GPIO2))...)

	logic = append(logic,
		region.R(b(IOC3), 0x020, 0x024, 4, wmsk),
		region.R(b(IOC3), 0x140, 0x148, 4, wmsk),
		region.R(b(IOC3), 0x210, 0x210, 4, wmsk),
		region.R(b(IOC3), 0x310, 0x310, 4, wmsk),
		region.R(b(IOC3), 0x410, 0x410, 4, wmsk),
		region.R(b(IOC3), 0x510, 0x510, 4, wmsk),
		region.R(b(IOC3), 0x610, 0x610, 4, wmsk),
		region.R(b(IOC3), 0x710, 0x710, 4, wmsk),
		region.R(b(IOC3), 0x800, 0x800, 4, wmsk),

		region.R(b(IOC47), 0x024, 0x03c, 4, wmsk),
		region.R(b(IOC47), 0x14c, 0x160, 4, wmsk),
		region.R(b(IOC47), 0x210, 0x218, 4, wmsk),
		region.R(b(IOC47), 0x310, 0x318, 4, wmsk),
		region.R(b(IOC47), 0x410, 0x418, 4, wmsk),
		region.R(b(IOC47), 0x510, 0x518, 4, wmsk),
		region.R(b(IOC47), 0x610, 0x618, 4, wmsk),
		region.R(b(IOC47), 0x710, 0x718, 4, wmsk),
		region.R(b(IOC47), 0x800, 0x808, 4, wmsk),
		region.R(b(IOC47), 0x80c, 0x80c, 4, 0),
		region.R(b(IOC47), 0x810, 0x810, 4, wmsk),

		region.R(b(IOC6), 0x040, 0x048, 4, wmsk),
		region.R(b(IOC6), 0x180, 0x194, 4, wmsk),
		region.R(b(IOC6), 0x220, 0x224, 4, wmsk),
		region.R(b(IOC6), 0x320, 0x324, 4, wmsk),
		region.R(b(IOC6), 0x420, 0x424, 4, wmsk),
		region.R(b(IOC6), 0x520, 0x524, 4, wmsk),
		region.R(b(IOC6), 0x620, 0x624, 4, wmsk),
		region.R(b(IOC6), 0x720, 0x724, 4, wmsk),
		region.R(b(IOC6), 0x800, 0x804, 4, wmsk),
		region.R(b(IOC6), 0x80c, 0x810, 4, wmsk),

		region.R(b(GPIO1), 0x010, 0x014, 4, wmsk),
		region.R(b(GPIO2), 0x010, 0x014, 4, wmsk),
	)

	// Channel i of each timer block sits at i*0x20 within its own window.
	for i := 0; i < nsTimers; i++ {
		ch := uint32(i) * 0x20
		logic = append(logic,
			region.R(b(NSTimer(i)), ch, ch+0x04, 4, 0),
			region.R(b(NSTimer(i)), ch+0x10, ch+0x10, 4, 0),
		)
	}

	for i := 0; i < sTimers; i++ {
		ch := uint32(i) * 0x20
		logic = append(logic,
			region.R(b(STimer(i)), ch, ch+0x04, 4, 0),
			region.R(b(STimer(i)), ch+0x10, ch+0x10, 4, 0),
		)
	}

	// Timeout range before the enable.
	logic = append(logic,
		region.R(b(WDTNS), 0x04, 0x04, 4, 0),
		region.R(b(WDTNS), 0x00, 0x00, 4, 0),
		region.R(b(WDTS), 0x04, 0x04, 4, 0),
		region.R(b(WDTS), 0x00, 0x00, 4, 0),
	)

	for _, m := range []string{
		"crypto", "dcf", "decom", "dma2ddr", "mac", "mcu", "rga2e_rd", "rga2e_wr",
		"rkdma", "sdmmc1", "usb", "emmc", "fspi", "isp", "sdmmc0", "vicap", "rkvdec",
	} {
		logic = append(logic, qos(b(QoS(m))))
	}

	pmu1 := []region.Region{
		region.R(b(PMU1CRU), 0x300, 0x300, 4, wmsk),
		region.R(b(PMU1CRU), 0x800, 0x804, 4, wmsk),
		region.R(b(PMU1CRU), 0xa00, 0xa04, 4, wmsk),
		region.R(b(PMU1CRU), 0xc08, 0xc08, 4, wmsk),

		region.R(b(IOC1), 0x008, 0x00c, 4, wmsk),
		region.R(b(IOC1), 0x110, 0x118, 4, wmsk),
		region.R(b(IOC1), 0x204, 0x204, 4, wmsk),
		region.R(b(IOC1), 0x304, 0x304, 4, wmsk),
		region.R(b(IOC1), 0x404, 0x404, 4, wmsk),
		region.R(b(IOC1), 0x504, 0x504, 4, wmsk),
		region.R(b(IOC1), 0x604, 0x604, 4, wmsk),
		region.R(b(IOC1), 0x704, 0x704, 4, wmsk),
		region.R(b(IOC1), 0x800, 0x804, 4, wmsk),
		region.R(b(IOC1), 0x808, 0x808, 4, 0),

		qos(b(QoS("fspi_pmu"))),
		qos(b(QoS("lpmcu"))),
		qos(b(QoS("spi2ahb"))),
	}

	pvtCore := []region.Region{
		region.R(b(PVTPLLCore), 0x020, 0x024, 4, wmsk),
		region.R(b(PVTPLLNPU), 0x020, 0x024, 4, wmsk),
	}

	pvtLogic := []region.Region{
		region.R(b(PVTPLLVepu), 0x020, 0x024, 4, wmsk),
		region.R(b(PVTPLLISP), 0x020, 0x024, 4, wmsk),
	}

	return &RegionSets{
		Core:        &region.Set{Name: "vd_core", Regions: core},
		Logic:       &region.Set{Name: "vd_log", Regions: logic},
		PMU1:        &region.Set{Name: "pd_pmu1", Regions: pmu1},
		PVTPLLCore:  &region.Set{Name: "pvtpll_core", Regions: pvtCore},
		PVTPLLLogic: &region.Set{Name: "pvtpll_logic", Regions: pvtLogic},
	}
}

package gpio_test

import (
	"testing"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/gpio"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blocks struct {
	log          *mmio.Log
	gpio, lo, hi *mmio.Sim
}

func newBank(t *testing.T) (*gpio.Bank, *blocks) {
	t.Helper()

	b := &blocks{log: &mmio.Log{}}
	b.gpio = mmio.NewSim("gpio0", b.log)
	b.lo = mmio.NewSim("ioc0", b.log)
	b.hi = mmio.NewSim("ioc1", b.log)

	b.gpio.HiwordRange(gpio.RegSwportDRL, gpio.RegSwportDDRH, 4)
	b.lo.HiwordRange(0x0, 0xc, 4)
	b.hi.HiwordRange(0x0, 0xc, 4)
	b.lo.Hiword(gpio.RegIOCPullLow)
	b.hi.Hiword(gpio.RegIOCPullHigh)

	return gpio.New(b.gpio, b.lo, b.hi), b
}

func TestConfigureOutputPin(t *testing.T) {
	t.Parallel()

	bank, b := newBank(t)
	b.gpio.Poke(gpio.RegSwportDRL, 0x0001)
	b.lo.Poke(0x4, 0x0030)

	bank.Configure([]config.IOPin{
		{ID: 5, Iomux: config.IomuxGPIO, Output: true, Level: 1, Pull: config.PullDown},
	})

	// level before direction, then iomux and pull
	assert.Equal(t, []mmio.Access{
		{Block: "gpio0", Off: gpio.RegSwportDRL, Val: 0x00200020},
		{Block: "gpio0", Off: gpio.RegSwportDDRL, Val: 0x00200020},
		{Block: "ioc0", Off: 0x4, Val: 0x00f00000},
		{Block: "ioc0", Off: gpio.RegIOCPullLow, Val: 0x0c000800},
	}, b.log.Writes)

	assert.Equal(t, uint32(0x0021), b.gpio.Peek(gpio.RegSwportDRL))
	assert.Equal(t, uint32(0x0020), b.gpio.Peek(gpio.RegSwportDDRL))
	assert.Equal(t, uint32(0x0000), b.lo.Peek(0x4))
	assert.Equal(t, uint32(0x0800), b.lo.Peek(gpio.RegIOCPullLow))
}

func TestConfigureHighPins(t *testing.T) {
	t.Parallel()

	bank, b := newBank(t)

	bank.Configure([]config.IOPin{
		{ID: 9, Iomux: 3, Pull: config.PullUp},
		{ID: 12, Iomux: config.IomuxGPIO},
	})

	assert.Equal(t, uint32(0x0030), b.hi.Peek(0x8))
	assert.Equal(t, uint32(1<<2), b.hi.Peek(gpio.RegIOCPullHigh))
	assert.Zero(t, b.gpio.Peek(gpio.RegSwportDDRL)&(1<<12))

	for _, w := range b.log.Writes {
		assert.NotEqual(t, gpio.RegSwportDRL, int(w.Off), "input pin must not drive a level")
	}
}

func TestDirectionUsesHighHalf(t *testing.T) {
	t.Parallel()

	bank, b := newBank(t)

	bank.SetDirection(18, true)
	bank.SetLevel(17, 1)

	assert.Equal(t, uint32(1<<2), b.gpio.Peek(gpio.RegSwportDDRH))
	assert.Equal(t, uint32(1<<1), b.gpio.Peek(gpio.RegSwportDRH))
}

func TestRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	bank, b := newBank(t)

	before := map[*mmio.Sim]map[uint32]uint32{
		b.gpio: {gpio.RegSwportDRL: 0x1234, gpio.RegSwportDRH: 0x00ff, gpio.RegSwportDDRL: 0x5555, gpio.RegSwportDDRH: 0x0001},
		b.lo:   {0x0: 0x1111, 0x4: 0x2222, gpio.RegIOCPullLow: 0xaaaa},
		b.hi:   {0x8: 0x3333, 0xc: 0x4444, gpio.RegIOCPullHigh: 0x5a5a},
	}

	for blk, regs := range before {
		for off, v := range regs {
			blk.Poke(off, v)
		}
	}

	bank.Configure([]config.IOPin{
		{ID: 0, Iomux: config.IomuxGPIO, Output: true},
		{ID: 15, Iomux: 1, Pull: config.PullUpDown},
	})
	bank.RouteDebug()

	require.NotEqual(t, uint32(0x3333), b.hi.Peek(0x8))

	bank.Restore()

	for blk, regs := range before {
		for off, v := range regs {
			assert.Equal(t, v, blk.Peek(off), "%s %#x", blk.Name(), off)
		}
	}
}

func TestIntRegs(t *testing.T) {
	t.Parallel()

	bank, b := newBank(t)
	b.gpio.Poke(gpio.RegIntEnL, 1)
	b.gpio.Poke(gpio.RegIntStatus, 0x10)
	b.gpio.Poke(gpio.RegIntRawStatus, 0x30)

	assert.Equal(t, uint32(0x10), bank.IntStatus())
	assert.Equal(t, [6]uint32{1, 0, 0, 0, 0x10, 0x30}, bank.IntRegs())
}

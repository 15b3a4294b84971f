// Package config describes a sleep configuration: which power mode to enter,
// which sources may wake the chip and how GPIO0 pins are parked.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mohae/deepcopy"
)

var (
	ErrUnknownMode   = errors.New("unknown mode flag")
	ErrUnknownWake   = errors.New("unknown wakeup source")
	ErrUnknownPull   = errors.New("unknown pull")
	ErrUnknownFormat = errors.New("unknown config format")
)

// Mode is the sleep mode bitset.
type Mode uint32

const (
	ArmPd        Mode = 1 << 0
	ArmOff       Mode = 1 << 1
	ArmOffDDRPd  Mode = 1 << 2
	ArmOffLogOff Mode = 1 << 3
	ArmOffPmuOff Mode = 1 << 4
	PmuHWPllsPd  Mode = 1 << 8
	PmuAlive32k  Mode = 1 << 9
	PmuDisOsc    Mode = 1 << 10
	Ext32k       Mode = 1 << 24
	TimeoutWkup  Mode = 1 << 25
	PmuDbg       Mode = 1 << 26
	LpPr         Mode = 1 << 27
)

// Wake is the wakeup source bitset. Bit positions are those of the PMU
// wakeup interrupt enable register.
type Wake uint32

const (
	WakeGPIO0   Wake = 1 << 0
	WakeSDMMC0  Wake = 1 << 1
	WakeSDIO    Wake = 1 << 2
	WakeUSBDev  Wake = 1 << 3
	WakeUART0   Wake = 1 << 4
	WakePWM0    Wake = 1 << 5
	WakeTimer   Wake = 1 << 6
	WakeHPTimer Wake = 1 << 7
	WakeSysInt  Wake = 1 << 8
	WakeAOV     Wake = 1 << 9
	WakeTimeout Wake = 1 << 10
)

type named[T ~uint32] struct {
	flag T
	name string
}

var modeNames = []named[Mode]{
	{ArmPd, "armpd"},
	{ArmOff, "armoff"},
	{ArmOffDDRPd, "armoff_ddrpd"},
	{ArmOffLogOff, "armoff_logoff"},
	{ArmOffPmuOff, "armoff_pmuoff"},
	{PmuHWPllsPd, "hw_plls_pd"},
	{PmuAlive32k, "pmualive_32k"},
	{PmuDisOsc, "dis_osc"},
	{Ext32k, "32k_ext"},
	{TimeoutWkup, "timeout_wkup"},
	{PmuDbg, "pmu_dbg"},
	{LpPr, "lp_pr"},
}

var wakeNames = []named[Wake]{
	{WakeGPIO0, "gpio0"},
	{WakeSDMMC0, "sdmmc0"},
	{WakeSDIO, "sdio"},
	{WakeUSBDev, "usbdev"},
	{WakeUART0, "uart0"},
	{WakePWM0, "pwm0"},
	{WakeTimer, "timer"},
	{WakeHPTimer, "hptimer"},
	{WakeSysInt, "sys_int"},
	{WakeAOV, "aov"},
	{WakeTimeout, "timeout"},
}

func parse[T ~uint32](table []named[T], names []string, unknown error) (T, error) {
	var v T

	for _, n := range names {
		found := false

		for _, e := range table {
			if strings.EqualFold(strings.TrimSpace(n), e.name) {
				v |= e.flag
				found = true

				break
			}
		}

		if !found {
			return 0, fmt.Errorf("%q: %w", n, unknown)
		}
	}

	return v, nil
}

func format[T ~uint32](table []named[T], v T) string {
	if v == 0 {
		return "none"
	}

	var parts []string

	for _, e := range table {
		if v&e.flag != 0 {
			parts = append(parts, e.name)
			v &^= e.flag
		}
	}

	if v != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(v)))
	}

	return strings.Join(parts, "|")
}

// ParseMode ORs the named mode flags.
func ParseMode(names ...string) (Mode, error) {
	return parse(modeNames, names, ErrUnknownMode)
}

// ParseWake ORs the named wakeup sources.
func ParseWake(names ...string) (Wake, error) {
	return parse(wakeNames, names, ErrUnknownWake)
}

// Has reports whether any of f is set.
func (m Mode) Has(f Mode) bool {
	return m&f != 0
}

func (m Mode) String() string {
	return format(modeNames, m)
}

// Has reports whether any of w is set.
func (w Wake) Has(f Wake) bool {
	return w&f != 0
}

func (w Wake) String() string {
	return format(wakeNames, w)
}

// Pull is a pin pull setting as encoded in the IOC pull registers.
type Pull uint32

const (
	PullNone Pull = iota
	PullUp
	PullDown
	PullUpDown
)

var pullNames = []string{"none", "up", "down", "updown"}

func (p Pull) String() string {
	if int(p) < len(pullNames) {
		return pullNames[p]
	}

	return fmt.Sprintf("Pull(%d)", uint32(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Pull) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pull) UnmarshalText(b []byte) error {
	for i, n := range pullNames {
		if strings.EqualFold(string(b), n) {
			*p = Pull(i)

			return nil
		}
	}

	return fmt.Errorf("%q: %w", b, ErrUnknownPull)
}

// IomuxGPIO is the iomux function number selecting the GPIO function.
const IomuxGPIO = 0

// IOPin is the sleep state of one GPIO0 pin.
type IOPin struct {
	ID     uint32 `yaml:"id" toml:"id"`
	Iomux  uint32 `yaml:"iomux" toml:"iomux"`
	Output bool   `yaml:"output" toml:"output"`
	Level  uint32 `yaml:"level" toml:"level"`
	Pull   Pull   `yaml:"pull" toml:"pull"`
}

// SleepConfig is supplied by the policy layer at the start of each suspend.
type SleepConfig struct {
	Mode   Mode
	Wake   Wake
	IOPins []IOPin
	Debug  bool
}

// Default returns the configuration used when no policy supplies one.
func Default() *SleepConfig {
	return &SleepConfig{
		Mode:  ArmOffLogOff | Ext32k | PmuAlive32k | PmuDisOsc | PmuDbg,
		Wake:  WakeGPIO0,
		Debug: true,
	}
}

// Clone returns a deep copy of c.
func (c *SleepConfig) Clone() *SleepConfig {
	return deepcopy.Copy(c).(*SleepConfig)
}

// Provider supplies the sleep configuration for the next cycle. A nil result
// keeps the previous one.
type Provider interface {
	SleepConfig() *SleepConfig
}

// Static always provides the same configuration.
type Static struct {
	Config *SleepConfig
}

// SleepConfig implements Provider.
func (s Static) SleepConfig() *SleepConfig {
	return s.Config
}

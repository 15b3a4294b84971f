package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := config.ParseMode("armoff_logoff", "PMUALIVE_32K", " 32k_ext ")
	require.NoError(t, err)
	assert.Equal(t, config.ArmOffLogOff|config.PmuAlive32k|config.Ext32k, m)
	assert.Equal(t, "armoff_logoff|pmualive_32k|32k_ext", m.String())

	_, err = config.ParseMode("armoff", "deepest")
	assert.True(t, errors.Is(err, config.ErrUnknownMode))

	_, err = config.ParseWake("gpio0", "bogus")
	assert.True(t, errors.Is(err, config.ErrUnknownWake))
}

func TestFlagStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", config.Mode(0).String())
	assert.Equal(t, "armpd|0x800", (config.ArmPd | 1<<11).String())
	assert.Equal(t, "gpio0|timeout", (config.WakeGPIO0 | config.WakeTimeout).String())
	assert.Equal(t, "updown", config.PullUpDown.String())
	assert.Equal(t, "Pull(7)", config.Pull(7).String())
}

func TestDefault(t *testing.T) {
	t.Parallel()

	c := config.Default()

	assert.Equal(t, config.ArmOffLogOff|config.Ext32k|config.PmuAlive32k|config.PmuDisOsc|config.PmuDbg, c.Mode)
	assert.Equal(t, config.WakeGPIO0, c.Wake)
	assert.True(t, c.Debug)
	assert.Empty(t, c.IOPins)
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	c := config.Default()
	c.IOPins = []config.IOPin{{ID: 3, Output: true, Level: 1}}

	cp := c.Clone()
	cp.IOPins[0].Level = 0
	cp.Mode = config.ArmPd

	assert.Equal(t, uint32(1), c.IOPins[0].Level)
	assert.Equal(t, config.Default().Mode, c.Mode)
}

const yamlConfig = `
mode: [armoff_pmuoff, pmualive_32k, timeout_wkup]
wakeup: [gpio0, sys_int]
debug: false
io:
  - id: 4
    iomux: 0
    output: true
    level: 1
    pull: none
  - id: 9
    iomux: 2
    pull: down
`

const tomlConfig = `
mode = ["armoff_pmuoff", "pmualive_32k", "timeout_wkup"]
wakeup = ["gpio0", "sys_int"]
debug = false

[[io]]
id = 4
iomux = 0
output = true
level = 1
pull = "none"

[[io]]
id = 9
iomux = 2
pull = "down"
`

func wantDecoded() *config.SleepConfig {
	return &config.SleepConfig{
		Mode: config.ArmOffPmuOff | config.PmuAlive32k | config.TimeoutWkup,
		Wake: config.WakeGPIO0 | config.WakeSysInt,
		IOPins: []config.IOPin{
			{ID: 4, Iomux: config.IomuxGPIO, Output: true, Level: 1, Pull: config.PullNone},
			{ID: 9, Iomux: 2, Pull: config.PullDown},
		},
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		format config.Format
		text   string
	}{
		{config.YAML, yamlConfig},
		{config.TOML, tomlConfig},
	} {
		c, err := config.Decode(strings.NewReader(tc.text), tc.format)
		require.NoError(t, err, tc.format)

		if diff := cmp.Diff(wantDecoded(), c); diff != "" {
			t.Errorf("%s: decoded config mismatch (-want +got):\n%s", tc.format, diff)
		}
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	t.Parallel()

	c, err := config.Decode(strings.NewReader("wakeup: [aov]\n"), config.YAML)
	require.NoError(t, err)

	assert.Equal(t, config.Default().Mode, c.Mode)
	assert.Equal(t, config.WakeAOV, c.Wake)
	assert.True(t, c.Debug)

	c, err = config.Decode(strings.NewReader(""), config.YAML)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := config.Decode(strings.NewReader("io:\n  - id: 1\n    pull: sideways\n"), config.YAML)
	assert.True(t, errors.Is(err, config.ErrUnknownPull), "%v", err)

	_, err = config.Decode(strings.NewReader("mode: [nope]\n"), config.YAML)
	assert.True(t, errors.Is(err, config.ErrUnknownMode))

	_, err = config.Decode(strings.NewReader("colour: blue\n"), config.YAML)
	assert.Error(t, err)

	_, err = config.Decode(strings.NewReader(""), config.Format("ini"))
	assert.True(t, errors.Is(err, config.ErrUnknownFormat))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	y := filepath.Join(dir, "sleep.yml")
	require.NoError(t, os.WriteFile(y, []byte(yamlConfig), 0o600))

	tm := filepath.Join(dir, "sleep.toml")
	require.NoError(t, os.WriteFile(tm, []byte(tomlConfig), 0o600))

	for _, p := range []string{y, tm} {
		c, err := config.Load(p)
		require.NoError(t, err, p)
		assert.Equal(t, wantDecoded(), c, p)
	}

	_, err := config.Load(filepath.Join(dir, "sleep.json"))
	assert.True(t, errors.Is(err, config.ErrUnknownFormat))

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEncodeDecodes(t *testing.T) {
	t.Parallel()

	for _, f := range []config.Format{config.YAML, config.TOML} {
		var buf bytes.Buffer

		require.NoError(t, config.Encode(&buf, wantDecoded(), f))

		c, err := config.Decode(&buf, f)
		require.NoError(t, err, f)
		assert.Equal(t, wantDecoded(), c, f)
	}
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	c := config.Default()

	var p config.Provider = config.Static{Config: c}

	assert.Same(t, c, p.SleepConfig())
	assert.Nil(t, config.Static{}.SleepConfig())
}

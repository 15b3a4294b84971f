package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// file is the on-disk shape. Flags are spelled by name.
type file struct {
	Mode   []string `yaml:"mode" toml:"mode"`
	Wakeup []string `yaml:"wakeup" toml:"wakeup"`
	IO     []IOPin  `yaml:"io" toml:"io"`
	Debug  *bool    `yaml:"debug" toml:"debug"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}

	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Load reads a configuration file. Fields the file leaves out keep their
// Default values.
func Load(path string) (*SleepConfig, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	c, err := Decode(fp, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Decode reads a configuration in format f from r.
func Decode(r io.Reader, f Format) (*SleepConfig, error) {
	var raw file

	switch f {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)

		if err := dec.Decode(&raw); err != nil && err != io.EOF {
			return nil, err
		}
	case TOML:
		if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%q: %w", f, ErrUnknownFormat)
	}

	return raw.build()
}

func (f *file) build() (*SleepConfig, error) {
	c := Default()

	if len(f.Mode) > 0 {
		m, err := ParseMode(f.Mode...)
		if err != nil {
			return nil, err
		}

		c.Mode = m
	}

	if f.Wakeup != nil {
		w, err := ParseWake(f.Wakeup...)
		if err != nil {
			return nil, err
		}

		c.Wake = w
	}

	if f.Debug != nil {
		c.Debug = *f.Debug
	}

	c.IOPins = f.IO

	return c, nil
}

// Encode writes c in format f. The output decodes back to c.
func Encode(w io.Writer, c *SleepConfig, f Format) error {
	raw := file{
		Mode:   names(modeNames, c.Mode),
		Wakeup: names(wakeNames, c.Wake),
		IO:     c.IOPins,
		Debug:  &c.Debug,
	}

	switch f {
	case YAML:
		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(&raw); err != nil {
			return err
		}

		if err := enc.Close(); err != nil {
			return err
		}

		_, err := w.Write(buf.Bytes())

		return err
	case TOML:
		return toml.NewEncoder(w).Encode(&raw)
	}

	return fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}

func names[T ~uint32](table []named[T], v T) []string {
	out := []string{}

	for _, e := range table {
		if v&e.flag != 0 {
			out = append(out, e.name)
		}
	}

	return out
}

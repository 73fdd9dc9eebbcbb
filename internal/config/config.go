// Package config loads optional YAML defaults for command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// File is the on-disk configuration. Unset fields leave flag defaults alone.
type File struct {
	Processes    *int           `yaml:"processes"`
	Depth        *int           `yaml:"depth"`
	Unique       *bool          `yaml:"unique"`
	ModTime      *bool          `yaml:"modtime"`
	Fade         *bool          `yaml:"fade"`
	Save         *string        `yaml:"save"`
	DataDir      *string        `yaml:"data_dir"`
	Port         *int           `yaml:"port"`
	Compress     *bool          `yaml:"compress"`
	Top          *int           `yaml:"top"`
	StallTimeout *time.Duration `yaml:"stall_timeout"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	var file File
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return File{}, fmt.Errorf("parsing config %q: %w", path, err)
	}

	return file, nil
}

// Apply sets every configured value on flags, skipping flags the user set explicitly.
// Flags missing from the set are ignored.
func (f File) Apply(flags *pflag.FlagSet) error {
	values := map[string]string{}

	if f.Processes != nil {
		values["processes"] = strconv.Itoa(*f.Processes)
	}

	if f.Depth != nil {
		values["depth"] = strconv.Itoa(*f.Depth)
	}

	if f.Unique != nil {
		values["unique"] = strconv.FormatBool(*f.Unique)
	}

	if f.ModTime != nil {
		values["modtime"] = strconv.FormatBool(*f.ModTime)
	}

	if f.Fade != nil {
		values["fade"] = strconv.FormatBool(*f.Fade)
	}

	if f.Save != nil {
		values["save"] = *f.Save
	}

	if f.DataDir != nil {
		values["data-dir"] = *f.DataDir
	}

	if f.Port != nil {
		values["port"] = strconv.Itoa(*f.Port)
	}

	if f.Compress != nil {
		values["no-compress"] = strconv.FormatBool(!*f.Compress)
	}

	if f.Top != nil {
		values["top"] = strconv.Itoa(*f.Top)
	}

	if f.StallTimeout != nil {
		values["stall-timeout"] = f.StallTimeout.String()
	}

	for name, value := range values {
		flag := flags.Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}

		if err := flag.Value.Set(value); err != nil {
			return fmt.Errorf("applying config value %s=%q: %w", name, value, err)
		}
	}

	return nil
}

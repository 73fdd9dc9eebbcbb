package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dirviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntP("processes", "p", 5, "")
	flags.IntP("depth", "d", 10, "")
	flags.Bool("modtime", false, "")
	flags.Bool("no-compress", false, "")
	flags.Duration("stall-timeout", 2*time.Minute, "")
	flags.String("data-dir", "/tmp/dv", "")

	return flags
}

func TestLoadAndApply(t *testing.T) {
	path := writeConfig(t, `
processes: 12
depth: 4
modtime: true
compress: false
stall_timeout: 30s
data_dir: /srv/dv
`)

	file, err := Load(path)
	require.NoError(t, err)

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--depth", "7"}))
	require.NoError(t, file.Apply(flags))

	processes, _ := flags.GetInt("processes")
	depth, _ := flags.GetInt("depth")
	modtime, _ := flags.GetBool("modtime")
	noCompress, _ := flags.GetBool("no-compress")
	stall, _ := flags.GetDuration("stall-timeout")
	dataDir, _ := flags.GetString("data-dir")

	assert.Equal(t, 12, processes)
	assert.Equal(t, 7, depth, "explicit flags win over the config file")
	assert.True(t, modtime)
	assert.True(t, noCompress)
	assert.Equal(t, 30*time.Second, stall)
	assert.Equal(t, "/srv/dv", dataDir)
}

func TestApplyIgnoresUnknownFlags(t *testing.T) {
	port := 9000
	file := File{Port: &port}

	require.NoError(t, file.Apply(newFlags()))
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "procsses: 3\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

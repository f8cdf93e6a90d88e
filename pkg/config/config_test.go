package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "ovsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("ovsd", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseShortFlags(t *testing.T) {
	cfg, err := Parse("ovsd", []string{"-s", "/tmp/ubus.sock", "-l", "4", "-S"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ubus.sock", cfg.Socket)
	assert.Equal(t, "4", cfg.LogLevel)
	assert.True(t, cfg.Stderr)
}

func TestParseFileAndFlags(t *testing.T) {
	path := writeConfig(t, `
socket: /run/ovsd/bus.sock
netifd-socket: /run/netifd/netifd.sock
ovs-vsctl: /usr/local/bin/ovs-vsctl
log-level: debug
metrics-address: 127.0.0.1:9476
`)

	cfg, err := Parse("ovsd", []string{"--config", path, "--log-level", "warning"})
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Socket:         "/run/ovsd/bus.sock",
		NetifdSocket:   "/run/netifd/netifd.sock",
		VsctlPath:      "/usr/local/bin/ovs-vsctl",
		LogLevel:       "warning",
		MetricsAddress: "127.0.0.1:9476",
	}, cfg)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "stderr: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Stderr)
	assert.Equal(t, DefaultSocket, cfg.Socket)
	assert.Equal(t, DefaultVsctlPath, cfg.VsctlPath)

	cfg, err = Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "sockett: /tmp/x\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "socket: [\n"))
	assert.Error(t, err)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse("ovsd", []string{"--socket", ""})
	assert.Error(t, err)

	_, err = Parse("ovsd", []string{"-l", "loud"})
	assert.Error(t, err)

	_, err = Parse("ovsd", []string{"--bogus"})
	assert.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	cfg, err := Parse("ovsd", []string{"--version", "--ovs-vsctl", ""})
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected logrus.Level
		wantErr  bool
	}{
		{input: "0", expected: logrus.ErrorLevel},
		{input: "1", expected: logrus.WarnLevel},
		{input: "2", expected: logrus.InfoLevel},
		{input: "3", expected: logrus.InfoLevel},
		{input: "4", expected: logrus.DebugLevel},
		{input: "9", expected: logrus.DebugLevel},
		{input: "crit", expected: logrus.ErrorLevel},
		{input: "Notice", expected: logrus.InfoLevel},
		{input: " debug ", expected: logrus.DebugLevel},
		{input: "trace", expected: logrus.TraceLevel},
		{input: "-1", wantErr: true},
		{input: "chatty", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

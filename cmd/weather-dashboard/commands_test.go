package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T, driver string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_DRIVER", driver)
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "weather.db"))
	t.Setenv("STATIC_DIR", filepath.Join(dir, "static"))
	t.Setenv("OPENWEATHER_API_KEY", "test")
	t.Setenv("NOTIFY_URLS", "")
	t.Setenv("MQTT_BROKER", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCommand().Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "alerts", "summary"})
}

func TestSummaryCommand_EmptyStore(t *testing.T) {
	setTestEnv(t, "memory")

	out, err := run(t, "summary", "--days", "3")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got)
}

func TestAlertsCommand(t *testing.T) {
	setTestEnv(t, "sqlite")

	out, err := run(t, "alerts", "--threshold", "0")
	require.NoError(t, err)

	var got struct {
		Alerts []any `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotNil(t, got.Alerts)
	assert.Empty(t, got.Alerts)
}

func TestAlertsCommand_InvalidWindow(t *testing.T) {
	setTestEnv(t, "memory")

	_, err := run(t, "alerts", "--window", "-1")
	assert.Error(t, err)
}

func TestAlertsCommand_ZeroConsecutiveRejected(t *testing.T) {
	setTestEnv(t, "memory")

	_, err := run(t, "alerts", "--consecutive", "0")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	setTestEnv(t, "postgres")

	_, err := run(t, "summary")
	assert.Error(t, err)
}

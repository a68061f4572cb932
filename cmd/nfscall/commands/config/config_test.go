package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoot = func() *cobra.Command {
	root := &cobra.Command{Use: "nfscall", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", "", "")
	root.AddCommand(Cmd)
	return root
}()

// run executes Cmd under a root carrying the --config flag. Flag values are
// reset first since cobra keeps them between runs.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	initForce, showOutput, schemaOutput = false, "yaml", ""
	require.NoError(t, testRoot.PersistentFlags().Set("config", ""))

	var out bytes.Buffer
	testRoot.SetOut(&out)
	testRoot.SetErr(&out)
	testRoot.SetArgs(args)
	err := testRoot.Execute()
	return out.String(), err
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# nfscall configuration"))

	_, err = run(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)
}

func TestShow(t *testing.T) {
	t.Run("YAMLDefaults", func(t *testing.T) {
		out, err := run(t, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "listen: 127.0.0.1:2049")
	})

	t.Run("JSONWithEnv", func(t *testing.T) {
		t.Setenv("NFSCALL_SERVER_LISTEN", "0.0.0.0:3049")
		out, err := run(t, "config", "show", "-o", "json")
		require.NoError(t, err)

		var cfg map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &cfg))
		server := cfg["server"].(map[string]any)
		assert.Equal(t, "0.0.0.0:3049", server["listen"])
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "config", "show")
		assert.Error(t, err)
	})
}

func TestSchema(t *testing.T) {
	out, err := run(t, "config", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "nfscall Configuration", schema["title"])

	props := schema["properties"].(map[string]any)
	for _, key := range []string{"logging", "telemetry", "metrics", "server", "capture", "client"} {
		assert.Contains(t, props, key)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("server:\n  listen: 127.0.0.1:4049\n"), 0644))
	out, err := run(t, "--config", good, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Validation: OK")
	assert.Contains(t, out, "127.0.0.1:4049")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logging:\n  level: LOUD\n"), 0644))
	_, err = run(t, "--config", bad, "config", "validate")
	assert.Error(t, err)
}

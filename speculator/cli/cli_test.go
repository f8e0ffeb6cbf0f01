package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	specerrors "github.com/twitter/speculator/common/errors"
)

const sampleTrace = "testdata/slow_map.json"

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := MakeSpeculatorCLI(context.Background())
	cmd.SetOutput(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func Test_Simulate(t *testing.T) {
	out, err := execute("simulate", "--trace", sampleTrace)
	if !assert.NoError(t, err) {
		return
	}
	var commands []map[string]interface{}
	if !assert.NoError(t, json.Unmarshal([]byte(out), &commands), out) {
		return
	}
	if assert.Len(t, commands, 1) {
		assert.Equal(t, "ADD_SPECULATIVE_ATTEMPT", commands[0]["kind"])
		assert.Equal(t, "default", commands[0]["reason"])
		assert.Equal(t, map[string]interface{}{"job": "job_1", "type": "map", "index": float64(1)}, commands[0]["task"])
	}
}

func Test_Simulate_NullEstimatorNeverSpeculates(t *testing.T) {
	dir, err := ioutil.TempDir("", "speculator-cli")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "null.yaml")
	if err := ioutil.WriteFile(path, []byte("estimator:\n  type: \"null\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute("simulate", "--trace", sampleTrace, "--config", path)
	if !assert.NoError(t, err) {
		return
	}
	assert.JSONEq(t, `[]`, out)
}

func Test_Simulate_BadInput(t *testing.T) {
	_, err := execute("simulate", "--config", "local.pbse")
	assert.Equal(t, specerrors.TraceFailureExitCode, specerrors.GetExitCode(err))

	_, err = execute("simulate", "--trace", sampleTrace, "--config", "no.such.config")
	assert.Equal(t, specerrors.ConfigFailureExitCode, specerrors.GetExitCode(err))

	_, err = execute("simulate", "--trace", "testdata/missing.json")
	assert.Equal(t, specerrors.TraceFailureExitCode, specerrors.GetExitCode(err))
}

func Test_Configs(t *testing.T) {
	out, err := execute("configs")
	if !assert.NoError(t, err) {
		return
	}
	var listing map[string][]string
	assert.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, []string{"default", "local.pbse", "local.vanilla"}, listing["configs"])
	assert.Contains(t, listing["estimators"], "null")
	assert.Contains(t, listing["estimators"], "replay")

	out, err = execute("configs", "local.vanilla")
	if !assert.NoError(t, err) {
		return
	}
	var resolved map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(out), &resolved))
	assert.Equal(t, "vanilla", resolved["Speculator"]["Type"])
	assert.Equal(t, "replay", resolved["Estimator"]["Type"])
}

func Test_Serve_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	cmd := MakeSpeculatorCLI(ctx)
	cmd.SetOutput(&out)
	cmd.SetArgs([]string{"serve", "--trace", sampleTrace, "--config", "local.vanilla"})
	assert.NoError(t, cmd.Execute())
	var commands []interface{}
	assert.NoError(t, json.Unmarshal(out.Bytes(), &commands), out.String())
	assert.NotNil(t, commands)
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/consumers"
	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/testsupport"
	"marketpulse/pkg/errors"
)

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("REDIS_ENABLED", "false")
}

func writeFile(t *testing.T, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	quietEnv(t)
	articles := writeFile(t, "articles.json", testsupport.MarketArticles())
	portfolio := writeFile(t, "portfolio.json", testsupport.Portfolio())

	out, err := execute(t, "", "analyze", "--articles", articles, "--portfolio", portfolio)
	require.NoError(t, err)

	var report analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, analysis.ModeRuleBased, report.Mode)
	assert.Len(t, report.Articles, len(testsupport.MarketArticles()))
	assert.Len(t, report.Drivers, 2)
	assert.NotEmpty(t, report.Drivers[0].Mappings)
}

func TestAnalyzeCommandReadsStdin(t *testing.T) {
	quietEnv(t)
	data, err := json.Marshal(testsupport.MarketArticles())
	require.NoError(t, err)

	out, err := execute(t, string(data), "analyze", "--articles", "-", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"mode\": \"rule_based\"")
}

func TestAnalyzeCommandErrors(t *testing.T) {
	quietEnv(t)

	_, err := execute(t, "", "analyze", "--articles", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, exitInput, exitCode(err))

	_, err = execute(t, "", "analyze", "--articles", writeFile(t, "a.json", testsupport.MarketArticles()),
		"--dictionary", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitConfig, exitCode(err))

	_, err = execute(t, "", "analyze", "--articles", writeFile(t, "a.json", testsupport.MarketArticles()),
		"--mode", "external_model")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnavailable)
}

func TestStreamCommandOverStdio(t *testing.T) {
	quietEnv(t)

	req1, err := json.Marshal(consumers.RequestEnvelope{ID: "r1", Request: analysis.Request{
		Articles:  testsupport.MarketArticles(),
		Portfolio: testsupport.Portfolio(),
	}})
	require.NoError(t, err)
	stdin := string(req1) + "\n\nnot json\n"

	out, err := execute(t, stdin, "stream")
	require.NoError(t, err)

	var envelopes []consumers.ReportEnvelope
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)
	for scanner.Scan() {
		var env consumers.ReportEnvelope
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &env))
		envelopes = append(envelopes, env)
	}
	require.Len(t, envelopes, 2)

	assert.Equal(t, "r1", envelopes[0].ID)
	require.NotNil(t, envelopes[0].Report)
	assert.Len(t, envelopes[0].Report.Drivers, 2)

	assert.Equal(t, "line-3", envelopes[1].ID)
	require.NotNil(t, envelopes[1].Error)
	assert.Equal(t, errors.CodeInput, envelopes[1].Error.Code)
}

func TestDictionaryCommands(t *testing.T) {
	out, err := execute(t, "", "dictionary", "dump")
	require.NoError(t, err)
	assert.Equal(t, string(dictionary.DefaultDocument()), out)

	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	require.NoError(t, os.WriteFile(path, dictionary.DefaultDocument(), 0o600))
	out, err = execute(t, "", "dictionary", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "version 2026.10.1")

	bad := filepath.Join(t.TempDir(), "dictionary.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: x\n"), 0o600))
	_, err = execute(t, "", "dictionary", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailed, exitCode(errors.New("boom")))
	assert.Equal(t, exitConfig, exitCode(errors.NewConfigError("bad", nil)))
	assert.Equal(t, exitInput, exitCode(errors.NewInputError("short")))
}

func TestTemplatesCommand(t *testing.T) {
	out, err := execute(t, "", "templates")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "mapping/impact: impact", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "scenarios/base: actions, assumptions, description"), lines[1])
	assert.Contains(t, lines[3], "market_impact")
	assert.Equal(t, "✓ all required blocks present", lines[4])
}

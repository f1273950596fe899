package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureJSON = `[
  {"employees": {"firstname": "Anna", "workforceUtilisation": {
    "utilisationRateLastTwelveMonths": "0.5",
    "utilisationRateYearToDate": "0.25",
    "lastThreeMonthsIndividually": [{"utilisationRate": "0.9"}, {"utilisationRate": "0.8"}, {"utilisationRate": "0.7"}],
    "monthlyCostDifference": 1200.5}}},
  {"externals": {"firstname": "Bob", "workforceUtilisation": {
    "utilisationRateLastTwelveMonths": "0.1",
    "utilisationRateYearToDate": "0.75",
    "lastThreeMonthsIndividually": [{"utilisationRate": "0.4"}, {"utilisationRate": "0.2"}, {"utilisationRate": "0.1"}],
    "monthlyCostDifference": "-300"}}}
]`

// isolateEnv points config and source resolution away from the user's files.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("UTL_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("UTL_OUTPUT", "")
	t.Setenv("UTL_SOURCE", "")
	t.Setenv("UTL_COLOR", "")
	t.Setenv("NO_COLOR", "1")
	return dir
}

func writeFixture(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "source-data.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &App{
		Stdout:    &stdout,
		Stderr:    &stderr,
		Stdin:     strings.NewReader(stdin),
		Version:   "test",
		Commit:    "none",
		BuildTime: "now",
	}
	err := app.Execute(context.Background(), args)
	return stdout.String(), stderr.String(), err
}

func TestRootHelp(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, "", "--help")
	if err != nil {
		t.Fatalf("--help: %v", err)
	}
	if !strings.HasPrefix(out, "utl - workforce utilisation table") {
		t.Errorf("help = %q", out)
	}
	for _, cmd := range []string{"table", "columns", "export", "config", "completion"} {
		if !strings.Contains(out, "  "+cmd) {
			t.Errorf("help is missing %q", cmd)
		}
	}
}

func TestVersion(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, "", "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if want := "utl test (commit: none, built: now)\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestCompletion(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(out, "utl") {
		t.Errorf("completion script does not mention utl")
	}
	if _, _, err := runCLI(t, "", "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

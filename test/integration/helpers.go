//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	APIEndpoint  string
	Email        string
	Password     string
	CarepointBin string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint:  os.Getenv("CAREPOINT_TEST_API"),
		Email:        os.Getenv("CAREPOINT_TEST_EMAIL"),
		Password:     os.Getenv("CAREPOINT_TEST_PASSWORD"),
		CarepointBin: getCarepointPath(),
		Verbose:      os.Getenv("CAREPOINT_VERBOSE") == "true",
	}
}

// getCarepointPath determines the path to the carepoint binary
func getCarepointPath() string {
	if path := os.Getenv("CAREPOINT_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../carepoint",
		"./carepoint",
		"../carepoint",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "carepoint"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIEndpoint == "" || config.Email == "" || config.Password == "" {
		t.Skip("CAREPOINT_TEST_API, CAREPOINT_TEST_EMAIL or CAREPOINT_TEST_PASSWORD not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.CarepointBin); err != nil {
		t.Skipf("carepoint binary not found at %s, skipping integration test", config.CarepointBin)
	}
}

// CommandRunner runs carepoint commands against an isolated home directory
type CommandRunner struct {
	config *TestConfig
	home   string
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config: config,
		home:   t.TempDir(),
		t:      t,
	}
}

func (runner *CommandRunner) env() []string {
	return append(os.Environ(),
		"HOME="+runner.home,
		"CAREPOINT_API="+runner.config.APIEndpoint,
		"CAREPOINT_STORE_TYPE=file",
		"CAREPOINT_STORE_PATH="+filepath.Join(runner.home, "credentials.yml"),
	)
}

// Run executes a carepoint command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a carepoint command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.CarepointBin, args...) //nolint:gosec // test binary
	cmd.Env = runner.env()

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.CarepointBin, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login authenticates the test account
func (runner *CommandRunner) Login() error {
	_, stderr, err := runner.RunWithInput(runner.config.Password+"\n", "login", "--email", runner.config.Email)
	if err != nil {
		return fmt.Errorf("failed to log in: %s", stderr)
	}

	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

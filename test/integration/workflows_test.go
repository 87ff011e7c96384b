//go:build integration

package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkflow_SessionLifecycle logs in, reads data, and logs out against a live backend
func TestWorkflow_SessionLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// 1. Reads before login fail fast
	_, stderr, err := runner.Run("medications", "today")
	require.Error(t, err)
	assert.Contains(t, stderr, "not logged in")

	// 2. Log in
	require.NoError(t, runner.Login())

	// 3. Token status reflects the stored session
	stdout, stderr, err := runner.Run("token", "status", "--output", "json")
	require.NoError(t, err, "Failed to read token status: %s", stderr)
	AssertJSONOutput(t, stdout)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, true, status["logged_in"])
	assert.Equal(t, true, status["has_refresh"])

	// 4. Profile
	stdout, stderr, err = runner.Run("profile", "--output", "json")
	require.NoError(t, err, "Failed to get profile: %s", stderr)
	assert.Contains(t, stdout, config.Email)

	// 5. Today's medications
	stdout, stderr, err = runner.Run("medications", "today", "--output", "json")
	require.NoError(t, err, "Failed to list today's medications: %s", stderr)
	AssertJSONOutput(t, stdout)

	// 6. Forced refresh
	_, stderr, err = runner.Run("token", "refresh")
	require.NoError(t, err, "Failed to refresh token: %s", stderr)

	// 7. Logout clears the session
	_, stderr, err = runner.Run("logout")
	require.NoError(t, err, "Failed to log out: %s", stderr)

	stdout, _, err = runner.Run("token", "status", "--output", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, false, status["logged_in"])
}

// TestWorkflow_MedicationLifecycle creates, toggles, and deletes a medication
func TestWorkflow_MedicationLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Login())

	name := GenerateTestName("workflow-med")

	stdout, stderr, err := runner.Run("medications", "add",
		"--name", name,
		"--type", "tablet",
		"--dosage-amount", "100",
		"--dosage-unit", "mg",
		"--frequency", "daily",
		"--time", "08:00")
	require.NoError(t, err, "Failed to create medication: %s", stderr)
	assert.Contains(t, stdout, name)

	stdout, stderr, err = runner.Run("medications", "list", "--output", "json")
	require.NoError(t, err, "Failed to list medications: %s", stderr)

	var medications []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &medications))

	var id string

	for _, med := range medications {
		if med["name"] == name {
			id, _ = med["id"].(string)
		}
	}

	require.NotEmpty(t, id, "created medication not listed")

	_, stderr, err = runner.Run("medications", "taken", id)
	require.NoError(t, err, "Failed to toggle taken: %s", stderr)

	_, stderr, err = runner.Run("medications", "delete", id)
	require.NoError(t, err, "Failed to delete medication: %s", stderr)

	// Deleting again is a mutation 404 and must fail
	_, _, err = runner.Run("medications", "delete", id)
	require.Error(t, err)
}

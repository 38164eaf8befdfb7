package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"milestones/internal/dependency"
	"milestones/internal/milestone"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "milestones", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "milestones version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())

	assert.Equal(t, "milestones version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}

	for _, name := range []string{"version", "order", "dependents", "check", "set-deps", "add", "delete", "watch"} {
		assert.True(t, found[name], "expected subcommand %q", name)
	}
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config-path", "project", "output"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "expected persistent flag %q", name)
	}
	assert.Equal(t, "p", rootCmd.PersistentFlags().Lookup("project").Shorthand)
	assert.Equal(t, "table", rootCmd.PersistentFlags().Lookup("output").DefValue)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "cycle is a rejection",
			err:      &dependency.CircularDependencyError{ID: 1, Path: []dependency.MilestoneID{1, 2, 1}},
			expected: ExitCodeRejected,
		},
		{
			name:     "self dependency is a rejection",
			err:      &dependency.SelfDependencyError{ID: 4},
			expected: ExitCodeRejected,
		},
		{
			name:     "wrapped unknown reference is a rejection",
			err:      fmt.Errorf("edit: %w", &dependency.UnknownReferenceError{IDs: []dependency.MilestoneID{9}}),
			expected: ExitCodeRejected,
		},
		{
			name:     "dependents block delete",
			err:      &milestone.HasDependentsError{ID: 1, Dependents: []dependency.MilestoneID{2}},
			expected: ExitCodeRejected,
		},
		{
			name:     "corrupted graph",
			err:      &dependency.CorruptedGraphError{Placed: 1, Total: 3},
			expected: ExitCodeCorrupted,
		},
		{
			name:     "missing milestone is a plain error",
			err:      &milestone.NotFoundError{ProjectID: 7, ID: 3},
			expected: ExitCodeError,
		},
		{
			name:     "storage failure",
			err:      errors.New("connection refused"),
			expected: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getExitCode(tt.err))
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("3, 1,2")
	require.NoError(t, err)
	assert.Equal(t, []dependency.MilestoneID{3, 1, 2}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseIDList("1,x")
	assert.ErrorContains(t, err, `invalid milestone id "x"`)
}

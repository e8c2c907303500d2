package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")

	opts, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "up", opts.command)
	assert.False(t, opts.createAdmin)

	opts, err = parseFlags([]string{"--command", "down", "--target", "3"})
	require.NoError(t, err)
	assert.Equal(t, "down", opts.command)
	assert.Equal(t, int64(3), opts.target)

	opts, err = parseFlags([]string{"-c", "none", "--create-admin", "--name", "Root", "--email", "root@example.com", "--password", "s3cret!"})
	require.NoError(t, err)
	assert.True(t, opts.createAdmin)
	assert.Equal(t, "root@example.com", opts.email)
}

func TestParseFlagsRejectsBadInput(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := parseFlags([]string{"--command", "sideways"})
	assert.ErrorContains(t, err, "unknown --command")

	_, err = parseFlags([]string{"--create-admin", "--email", "root@example.com"})
	assert.ErrorContains(t, err, "requires --name")

	_, err = parseFlags([]string{"extra"})
	assert.ErrorContains(t, err, "unexpected argument")
}

func TestParseFlagsPasswordFromEnv(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "from-env")
	opts, err := parseFlags([]string{"--create-admin", "--name", "Root", "--email", "root@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", opts.password)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvZipsIdentityLists(t *testing.T) {
	t.Setenv("SQUASH_BASE_URL", "https://booking.example.com")
	t.Setenv("SQUASH_USERNAMES", "alice, bob,carol")
	t.Setenv("SQUASH_SECRETS", "pw1,pw2, pw3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob", "carol"}, cfg.Usernames)
	require.Equal(t, []string{"pw1", "pw2", "pw3"}, cfg.Secrets)
	require.NoError(t, cfg.RequireIdentities())
}

func TestFromEnvRejectsUnevenIdentityLists(t *testing.T) {
	t.Setenv("SQUASH_BASE_URL", "https://booking.example.com")
	t.Setenv("SQUASH_USERNAMES", "alice,bob")
	t.Setenv("SQUASH_SECRETS", "pw1")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvRequiresBaseURL(t *testing.T) {
	t.Setenv("SQUASH_BASE_URL", "")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("SQUASH_BASE_URL", "booking.example.com")
	_, err = FromEnv()
	require.Error(t, err)
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SQUASH_BASE_URL", "https://booking.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "1", cfg.SiteID)
	require.Equal(t, 16, cfg.ResourceIDOffset)
	require.Equal(t, 5, cfg.CourtCount)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 5*time.Second, cfg.PollInterval)
	require.Error(t, cfg.RequireIdentities())

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Europe/Amsterdam", loc.String())
}

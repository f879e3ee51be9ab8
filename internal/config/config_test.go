package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "absence-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, []string{"admin", "rh", "hr", "formation", "dosimetrie"}, cfg.Workflow.HRRoleLabels)
	assert.False(t, cfg.Workflow.AllowOwnerCancel)
	assert.Equal(t, 60*time.Second, cfg.Workflow.RoleCacheTTL())
}

func TestLoadWorkflowOverrides(t *testing.T) {
	t.Setenv("WORKFLOW_HR_ROLE_LABELS", "people-ops, Admin ,")
	t.Setenv("WORKFLOW_ALLOW_OWNER_CANCEL", "true")
	t.Setenv("WORKFLOW_ROLE_CACHE_TTL_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"people-ops", "Admin"}, cfg.Workflow.HRRoleLabels)
	assert.True(t, cfg.Workflow.AllowOwnerCancel)
	assert.Equal(t, time.Duration(0), cfg.Workflow.RoleCacheTTL())
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequestTimeout(t *testing.T) {
	app := AppConfig{RequestTimeoutSeconds: 15}
	assert.Equal(t, 15*time.Second, app.RequestTimeout())

	app.RequestTimeoutSeconds = 0
	assert.Equal(t, time.Duration(0), app.RequestTimeout())
}

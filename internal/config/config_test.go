package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"GRADEBOOK_DB":              "/tmp/runs.db",
		"GRADEBOOK_POLICY":          "/etc/gradebook/policy.json",
		"GRADEBOOK_LOG_LEVEL":       "debug",
		"GRADEBOOK_LOG_FILE":        "/tmp/gradebook.log",
		"GRADEBOOK_LOG_MAX_SIZE_MB": "50",
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/runs.db", cfg.DBPath)
	assert.Equal(t, "/etc/gradebook/policy.json", cfg.PolicyFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/gradebook.log", cfg.Log.File)
	assert.Equal(t, 50, cfg.Log.MaxSizeMB)
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown level", map[string]string{"GRADEBOOK_LOG_LEVEL": "loud"}},
		{"zero size", map[string]string{"GRADEBOOK_LOG_MAX_SIZE_MB": "0"}},
		{"not a number", map[string]string{"GRADEBOOK_LOG_MAX_BACKUPS": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.vars)
			require.Error(t, err)
		})
	}
}

func TestFromEnv_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "GRADEBOOK_LOG_LEVEL=debug\nGRADEBOOK_DB=/from/dotenv.db\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("GRADEBOOK_DB", "/from/process.db")

	cfg, err := FromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/from/process.db", cfg.DBPath)
}

func TestFromEnv_MissingDotEnv(t *testing.T) {
	t.Setenv("GRADEBOOK_LOG_LEVEL", "warn")
	cfg, err := FromEnv(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

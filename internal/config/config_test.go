package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kantan.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDatabase, EnvMaxPageSize, EnvAdminUser, EnvAdminPass} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
	assert.False(t, conf.Admin.HasAdmin())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[database]
file = "/var/lib/kantan/strings.db"

[query]
default_limit = 25
max_limit = 50

[admin]
username = "root"
password = "secret"
`)

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/kantan/strings.db", conf.DB.File)
	assert.Equal(t, QueryConfig{DefaultLimit: 25, MaxLimit: 50}, conf.Query)
	assert.True(t, conf.Admin.HasAdmin())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[query]\nmax_limit = 500\n")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().DB.File, conf.DB.File)
	assert.Equal(t, 100, conf.Query.DefaultLimit)
	assert.Equal(t, 500, conf.Query.MaxLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[database]\nfile = \"from-file.db\"\n")
	t.Setenv(EnvDatabase, "from-env.db")
	t.Setenv(EnvMaxPageSize, "40")
	t.Setenv(EnvAdminUser, "admin")
	t.Setenv(EnvAdminPass, "pw")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", conf.DB.File)
	assert.Equal(t, 40, conf.Query.MaxLimit)
	assert.Equal(t, 40, conf.Query.DefaultLimit, "default is lowered to the new maximum")
	assert.Equal(t, AdminConfig{Username: "admin", Password: "pw"}, conf.Admin)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"bad toml", "[database\nfile=", nil},
		{"unknown key", "[database]\ndriver = \"postgres\"\n", nil},
		{"empty database", "[database]\nfile = \"\"\n", nil},
		{"zero max limit", "[query]\nmax_limit = 0\n", nil},
		{"default above max", "[query]\ndefault_limit = 200\nmax_limit = 100\n", nil},
		{"admin without password", "[admin]\nusername = \"root\"\n", nil},
		{"bad page size env", "", map[string]string{EnvMaxPageSize: "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, tt.content)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

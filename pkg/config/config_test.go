package config

import (
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParseEnv(t *testing.T) {
	is := is.New(t)
	td := t.TempDir()
	t.Setenv("SOFT_MEMBERS_DATA_PATH", td)
	t.Setenv("SOFT_MEMBERS_ORGANIZATION_DEFAULT", "acme")
	t.Setenv("SOFT_MEMBERS_MEMBERSHIPS_ENFORCE_MAX_MEMBERS", "true")
	t.Setenv("SOFT_MEMBERS_AUTH_TOKEN_EXPIRY", "12h")
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.DataPath, td)
	is.Equal(cfg.Organization.Default, "acme")
	is.True(cfg.Memberships.EnforceMaxMembers)
	is.Equal(cfg.TokenExpiry(), 12*time.Hour)
}

func TestCustomConfigLocation(t *testing.T) {
	is := is.New(t)
	td := t.TempDir()
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("SOFT_MEMBERS_CONFIG_LOCATION"))
	})

	// Test that we get data from the custom file location, and not from the data dir.
	is.NoErr(os.Setenv("SOFT_MEMBERS_CONFIG_LOCATION", "testdata/config.yaml"))
	t.Setenv("SOFT_MEMBERS_DATA_PATH", td)
	cfg := DefaultConfig()
	is.NoErr(cfg.Parse())
	is.Equal(cfg.Name, "Test server name")
	is.Equal(cfg.Organization.Default, "acme")
	is.True(cfg.Memberships.EnforceMaxMembers)
	// If we unset the custom location, then use the default location.
	is.NoErr(os.Unsetenv("SOFT_MEMBERS_CONFIG_LOCATION"))
	cfg = DefaultConfig()
	is.Equal(cfg.Name, "Soft Members")
	is.Equal(cfg.ConfigPath(), td+"/config.yaml")
	// Test that if the custom config location doesn't exist, default to datapath config.
	is.NoErr(os.Setenv("SOFT_MEMBERS_CONFIG_LOCATION", "testdata/config_nonexistent.yaml"))
	cfg = DefaultConfig()
	is.Equal(cfg.ConfigPath(), td+"/config.yaml")
}

func TestWriteAndParseConfig(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Auth.JWTSecret = "s3cr3t"
	cfg.Organization.Default = "acme"
	is.NoErr(cfg.WriteConfig())
	is.True(cfg.Exist())

	parsed := DefaultConfig()
	parsed.DataPath = cfg.DataPath
	is.NoErr(parsed.ParseFile())
	is.Equal(parsed.Auth.JWTSecret, "s3cr3t")
	is.Equal(parsed.Organization.Default, "acme")
	is.Equal(parsed.Memberships.ExpiringDays, 30)
	is.Equal(parsed.Jobs.ExpireMemberships, "@daily")
}

func TestValidate(t *testing.T) {
	for name, cfg := range map[string]*Config{
		"bad expiry":     {Auth: AuthConfig{TokenExpiry: "forever"}},
		"negative days":  {Memberships: MembershipsConfig{ExpiringDays: -1}},
		"negative limit": {Memberships: MembershipsConfig{PageLimit: -5}},
	} {
		t.Run(name, func(t *testing.T) {
			cfg.DataPath = t.TempDir()
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() => nil, want error")
			}
		})
	}
}

func TestValidateAbsolutePaths(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.HTTP.TLSKeyPath = "tls.key"
	cfg.HTTP.PublicURL = "http://localhost:23240/"
	is.NoErr(cfg.Validate())
	is.Equal(cfg.HTTP.TLSKeyPath, cfg.DataPath+"/tls.key")
	is.Equal(cfg.HTTP.PublicURL, "http://localhost:23240")
	is.Equal(cfg.DB.DataSource, cfg.DataPath+"/soft-members.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
}

func TestTokenExpiryFallback(t *testing.T) {
	cfg := &Config{}
	if d := cfg.TokenExpiry(); d != 7*24*time.Hour {
		t.Errorf("TokenExpiry() => %v, want %v", d, 7*24*time.Hour)
	}
}

func TestEnviron(t *testing.T) {
	is := is.New(t)
	is.Equal(len((*Config)(nil).Environ()), 0)
	envs := DefaultConfig().Environ()
	is.True(len(envs) > 0)
	is.Equal(envs[1], "SOFT_MEMBERS_NAME=Soft Members")
}

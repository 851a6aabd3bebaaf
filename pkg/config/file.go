package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Soft Members Server configurations

# The name of the server.
name: "{{ .Name }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP server configuration.
http:
  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The path to the TLS private key.
  tls_key_path: "{{ .HTTP.TLSKeyPath }}"

  # The path to the TLS certificate.
  tls_cert_path: "{{ .HTTP.TLSCertPath }}"

  # The public URL of the HTTP server.
  # Make sure to use https:// if you are using TLS.
  public_url: "{{ .HTTP.PublicURL }}"

# The stats server configuration.
stats:
  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# The database configuration.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  # Make sure foreign key support is enabled when using SQLite.
  data_source: "{{ .DB.DataSource }}"

# Session token configuration.
auth:
  # The secret used to sign session tokens.
  jwt_secret: "{{ .Auth.JWTSecret }}"
  # How long a session token stays valid, e.g. "7d" or "12h".
  token_expiry: "{{ .Auth.TokenExpiry }}"
  # The bcrypt cost used to hash passwords.
  bcrypt_cost: {{ .Auth.BcryptCost }}

# Tenant configuration.
organization:
  # The slug or id of the organization used by public requests that don't
  # name one, such as registration.
  default: "{{ .Organization.Default }}"

# Membership lifecycle configuration.
memberships:
  # Reject linked members beyond the membership type's max_members.
  enforce_max_members: {{ .Memberships.EnforceMaxMembers }}
  # The default window, in days, of the expiring memberships report.
  expiring_days: {{ .Memberships.ExpiringDays }}
  # The maximum page size of paginated listings.
  page_limit: {{ .Memberships.PageLimit }}

# Cron job schedules.
jobs:
  # Expire active memberships past their end date.
  expire_memberships: "{{ .Jobs.ExpireMemberships }}"
`))

func newConfigFile(cfg *Config) string {
	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}

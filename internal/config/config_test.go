package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 20
  write_timeout: 20
  idle_timeout: 180
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
nats:
  url: "nats://localhost:4222"
  stream_name: "CUSTOM_FEED"
temporal:
  host_port: "temporal.example.com:7233"
  namespace: "production"
  notify_task_queue: "custom-notify-queue"
auth:
  jwt_secret: "test-secret"
  challenge_ttl: "2m"
  token_ttl: "12h"
  gateway_service_keys:
    - "gw-key-1"
    - "gw-key-2"
gateway:
  url: "https://gateway.example.com"
  service_key: "svc-key"
  timeout: "15s"
pricing:
  url: "https://oracle.example.com"
  api_key: "oracle-key"
cloudflare:
  account_id: "cf-account"
  api_token: "cf-token"
  customer_domain: "stream.example.com"
quote:
  callback_url: "https://pay.example.com/notify"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 20, cfg.Server.ReadTimeout)
				assert.Equal(t, 180, cfg.Server.IdleTimeout)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "CUSTOM_FEED", cfg.NATS.StreamName)
				assert.Equal(t, "temporal.example.com:7233", cfg.Temporal.HostPort)
				assert.Equal(t, "production", cfg.Temporal.Namespace)
				assert.Equal(t, "custom-notify-queue", cfg.Temporal.NotifyTaskQueue)
				assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
				assert.Equal(t, 2*time.Minute, cfg.Auth.ChallengeTTL)
				assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
				assert.Len(t, cfg.Auth.GatewayServiceKeys, 2)
				assert.Equal(t, "https://gateway.example.com", cfg.Gateway.URL)
				assert.Equal(t, "svc-key", cfg.Gateway.ServiceKey)
				assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
				assert.Equal(t, "https://oracle.example.com", cfg.Pricing.URL)
				assert.Equal(t, "cf-account", cfg.Cloudflare.AccountID)
				assert.Equal(t, "stream.example.com", cfg.Cloudflare.CustomerDomain)
				assert.Equal(t, "https://pay.example.com/notify", cfg.Quote.CallbackURL)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
auth:
  jwt_secret: "test-secret"
gateway:
  url: "https://gateway.example.com"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 10, cfg.Server.ReadTimeout)
				assert.Equal(t, 10, cfg.Server.WriteTimeout)
				assert.Equal(t, 120, cfg.Server.IdleTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "SETTLEMENT_FEED", cfg.NATS.StreamName)
				assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
				assert.Equal(t, "default", cfg.Temporal.Namespace)
				assert.Equal(t, "kn0w1-settlement-notify", cfg.Temporal.NotifyTaskQueue)
				assert.Equal(t, 5*time.Minute, cfg.Auth.ChallengeTTL)
				assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
				assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
				assert.Equal(t, 10*time.Second, cfg.Pricing.Timeout)
			},
		},
		{
			name: "missing jwt secret",
			configFile: `
database:
  host: localhost
gateway:
  url: "https://gateway.example.com"
`,
			expectError: "auth.jwt_secret is required",
		},
		{
			name: "missing gateway url",
			configFile: `
database:
  host: localhost
auth:
  jwt_secret: "test-secret"
`,
			expectError: "gateway.url is required",
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: "failed to read config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadAPIConfig(configFile, "")

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadNotifyWorkerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *NotifyWorkerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
temporal:
  host_port: "temporal.example.com:7233"
  namespace: "production"
  notify_task_queue: "custom-queue"
  max_concurrent_activity_execution_size: 100
  worker_activities_per_second: 100
  max_concurrent_activity_task_pollers: 20
`,
			validate: func(t *testing.T, cfg *NotifyWorkerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "temporal.example.com:7233", cfg.Temporal.HostPort)
				assert.Equal(t, "production", cfg.Temporal.Namespace)
				assert.Equal(t, "custom-queue", cfg.Temporal.NotifyTaskQueue)
				assert.Equal(t, 100, cfg.Temporal.MaxConcurrentActivityExecutionSize)
				assert.Equal(t, 100.0, cfg.Temporal.WorkerActivitiesPerSecond)
				assert.Equal(t, 20, cfg.Temporal.MaxConcurrentActivityTaskPollers)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
`,
			validate: func(t *testing.T, cfg *NotifyWorkerConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
				assert.Equal(t, "default", cfg.Temporal.Namespace)
				assert.Equal(t, "kn0w1-settlement-notify", cfg.Temporal.NotifyTaskQueue)
				assert.Equal(t, 50, cfg.Temporal.MaxConcurrentActivityExecutionSize)
				assert.Equal(t, 50.0, cfg.Temporal.WorkerActivitiesPerSecond)
				assert.Equal(t, 10, cfg.Temporal.MaxConcurrentActivityTaskPollers)
			},
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadNotifyWorkerConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadReconcilerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *ReconcilerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: false
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
nats:
  url: "nats://localhost:4222"
gateway:
  url: "https://gateway.example.com"
  service_key: "svc-key"
reconciler:
  batch_size: 50
  stale_after: "30m"
  worker:
    pool_size: 10
    queue_size: 64
`,
			validate: func(t *testing.T, cfg *ReconcilerConfig) {
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "https://gateway.example.com", cfg.Gateway.URL)
				assert.Equal(t, 50, cfg.Reconciler.BatchSize)
				assert.Equal(t, 30*time.Minute, cfg.Reconciler.StaleAfter)
				assert.Equal(t, 10, cfg.Reconciler.Worker.WorkerPoolSize)
				assert.Equal(t, 64, cfg.Reconciler.Worker.WorkerQueueSize)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
gateway:
  url: "https://gateway.example.com"
`,
			validate: func(t *testing.T, cfg *ReconcilerConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, 5, cfg.Database.MaxOpenConns)
				assert.Equal(t, 2, cfg.Database.MaxIdleConns)
				assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
				assert.Equal(t, 100, cfg.Reconciler.BatchSize)
				assert.Equal(t, 10*time.Minute, cfg.Reconciler.StaleAfter)
				assert.Equal(t, 20, cfg.Reconciler.Worker.WorkerPoolSize)
				assert.Equal(t, 256, cfg.Reconciler.Worker.WorkerQueueSize)
				assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
			},
		},
		{
			name: "missing database host",
			configFile: `
database:
  dbname: testdb
gateway:
  url: "https://gateway.example.com"
`,
			expectError: "database.host is required",
		},
		{
			name: "missing gateway url",
			configFile: `
database:
  host: localhost
  dbname: testdb
`,
			expectError: "gateway.url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadReconcilerConfig(configFile, "")

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				tt.validate(t, cfg)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		cfg.DSN())
}

func TestDatabaseConfig_ReadDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "primary",
		Port:     5432,
		ReadHost: "replica",
		User:     "user",
		Password: "pass",
		DBName:   "db",
		SSLMode:  "disable",
	}

	// ReadPort falls back to Port when unset
	assert.Equal(t,
		"host=replica port=5432 user=user password=pass dbname=db sslmode=disable",
		cfg.ReadDSN())

	cfg.ReadPort = 5433
	assert.Equal(t,
		"host=replica port=5433 user=user password=pass dbname=db sslmode=disable",
		cfg.ReadDSN())
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// Viper uses the KN0W1_ prefix, so env vars need the prefix
	envFile := filepath.Join(envDir, ".env")
	envContent := `KN0W1_DEBUG=true
KN0W1_DATABASE_HOST=env-host
KN0W1_DATABASE_PORT=3306
KN0W1_DATABASE_USER=env-user
KN0W1_DATABASE_PASSWORD=env-pass
KN0W1_DATABASE_DBNAME=env-db
KN0W1_DATABASE_SSLMODE=require
`
	require.NoError(t, os.WriteFile(envFile, []byte(envContent), 0600))

	// Config file with different values to verify env vars override
	configPath := filepath.Join(tmpDir, "config.yaml")
	configFile := `
debug: false
database:
  host: file-host
  port: 5432
  user: file-user
  password: file-pass
  dbname: file-db
  sslmode: disable
auth:
  jwt_secret: "test-secret"
gateway:
  url: "https://gateway.example.com"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configFile), 0600))

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// The .env file is loaded via godotenv.Overload, which sets actual
	// environment variables that AutomaticEnv picks up with the KN0W1_ prefix
	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "env-user", cfg.Database.User)
	assert.Equal(t, "env-pass", cfg.Database.Password)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
}

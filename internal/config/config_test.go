package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no stray .env or config.yaml is
// picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "chodang", cfg.Storage.Bucket)
	assert.Equal(t, map[string]string{"550": "erp/550.csv", "콩국물": "erp/soup.csv"}, cfg.Storage.Products)
	assert.Equal(t, "평균매출수량", cfg.Storage.QuantityColumn)
	assert.Equal(t, "utf-8", cfg.Storage.Encoding)

	assert.Equal(t, 5, cfg.Report.WindowDays)
	assert.Equal(t, "ko", cfg.Report.Language)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SALESBOARD_SERVER_PORT", "9090")
	t.Setenv("SALESBOARD_STORAGE_BACKEND", "GCS")
	t.Setenv("SALESBOARD_STORAGE_PRODUCTS", "두부:erp/tofu.csv")
	t.Setenv("SALESBOARD_STORAGE_TIMEOUT", "5s")
	t.Setenv("SALESBOARD_REPORT_WINDOW_DAYS", "3")
	t.Setenv("SALESBOARD_SECURITY_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gcs", cfg.Storage.Backend)
	assert.Equal(t, map[string]string{"두부": "erp/tofu.csv"}, cfg.Storage.Products)
	assert.Equal(t, 5*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, 3, cfg.Report.WindowDays)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := writeFile(t, dir, "salesboard.yaml", `
server:
  port: 7070
  read_timeout: 20s
storage:
  backend: file
  bucket: chodang
  base_dir: /srv/exports
  products:
    "550": erp/550.xlsx
report:
  window_days: 2
  language: en
`)
	t.Setenv("SALESBOARD_SERVER_PORT", "7171")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/srv/exports", cfg.Storage.BaseDir)
	assert.Equal(t, map[string]string{"550": "erp/550.xlsx"}, cfg.Storage.Products, "file catalog replaces defaults")
	assert.Equal(t, 2, cfg.Report.WindowDays)
	assert.Equal(t, "en", cfg.Report.Language)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout, "untouched fields keep defaults")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, dir, ".env", "SALESBOARD_STORAGE_BUCKET=from-dotenv\nSALESBOARD_LOGGING_LEVEL=debug\n")
	t.Setenv("SALESBOARD_LOGGING_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("SALESBOARD_STORAGE_BUCKET") })

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Storage.Bucket)
	assert.Equal(t, "warn", cfg.Logging.Level, "real environment wins over .env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SALESBOARD_SERVER_PORT", "99999"},
		{"unknown backend", "SALESBOARD_STORAGE_BACKEND", "ftp"},
		{"radius above max", "SALESBOARD_REPORT_WINDOW_DAYS", "8"},
		{"unknown encoding", "SALESBOARD_STORAGE_ENCODING", "latin1"},
		{"bad duration", "SALESBOARD_SERVER_READ_TIMEOUT", "soon"},
		{"bad log level", "SALESBOARD_LOGGING_LEVEL", "chatty"},
		{"bad endpoint", "SALESBOARD_STORAGE_ENDPOINT", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(tt.key, tt.val)

			_, err := LoadFrom("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileBackendNeedsBaseDir(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SALESBOARD_STORAGE_BACKEND", "file")
	t.Setenv("SALESBOARD_STORAGE_BASE_DIR", "")

	_, err := LoadFrom("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_dir")
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetConfigFilePath(t *testing.T) {
	dir := chdirTemp(t)
	assert.Equal(t, "", getConfigFilePath())

	writeFile(t, dir, "config.yaml", "server:\n  port: 8081\n")
	assert.Equal(t, "config.yaml", getConfigFilePath())

	t.Setenv("SALESBOARD_CONFIG_FILE", "/etc/salesboard.yaml")
	assert.Equal(t, "/etc/salesboard.yaml", getConfigFilePath())
}

func TestStorageConfig_ProductNames(t *testing.T) {
	s := StorageConfig{Products: map[string]string{"콩국물": "b", "550": "a", "100": "c"}}
	assert.Equal(t, []string{"100", "550", "콩국물"}, s.ProductNames())
}

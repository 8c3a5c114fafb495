package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("pdfsplit", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", newFlags(t, "-i", "doc.pdf"))
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf", cfg.Input)
	assert.Equal(t, "output_pages", cfg.Output)
	assert.Equal(t, 1, cfg.Workers)
	assert.False(t, cfg.Clean)
	assert.False(t, cfg.KeepGoing)
	assert.False(t, cfg.PDF.Strict)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load("", newFlags(t,
		"--input", "in.pdf",
		"-o", "pages",
		"-w", "4",
		"--clean",
		"--keep-going",
		"--strict",
		"--password", "pw",
		"--log-level", "DEBUG",
		"--log-format", "json",
	))
	require.NoError(t, err)

	assert.Equal(t, "in.pdf", cfg.Input)
	assert.Equal(t, "pages", cfg.Output)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Clean)
	assert.True(t, cfg.KeepGoing)
	assert.True(t, cfg.PDF.Strict)
	assert.Equal(t, "pw", cfg.PDF.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
input: from-file.pdf
output: file-output
workers: 2
keep_going: true
pdf:
  strict: true
log:
  level: info
  file: /tmp/pdfsplit.log
`)

	cfg, err := Load(path, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "from-file.pdf", cfg.Input)
	assert.Equal(t, "file-output", cfg.Output)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.KeepGoing)
	assert.True(t, cfg.PDF.Strict)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "/tmp/pdfsplit.log", cfg.Log.File)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "input: file.pdf\noutput: file-out\nworkers: 2\n")
	t.Setenv("PDFSPLIT_OUTPUT", "env-out")
	t.Setenv("PDFSPLIT_WORKERS", "3")
	t.Setenv("PDFSPLIT_LOG_LEVEL", "error")

	// 环境变量覆盖配置文件
	cfg, err := Load(path, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "file.pdf", cfg.Input)
	assert.Equal(t, "env-out", cfg.Output)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "error", cfg.Log.Level)

	// 命令行参数覆盖环境变量
	cfg, err = Load(path, newFlags(t, "-o", "flag-out"))
	require.NoError(t, err)
	assert.Equal(t, "flag-out", cfg.Output)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), newFlags(t, "-i", "x.pdf"))
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing input", nil},
		{"zero workers", []string{"-i", "a.pdf", "-w", "0"}},
		{"empty output", []string{"-i", "a.pdf", "-o", ""}},
		{"bad log level", []string{"-i", "a.pdf", "--log-level", "chatty"}},
		{"bad log format", []string{"-i", "a.pdf", "--log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", newFlags(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "PDFSPLIT_DOTENV_TEST_OUTPUT"
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(key+"=from-dotenv\n"), 0644))

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "from-dotenv", os.Getenv(key))

	// 文件不存在时忽略
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestValidateMissingInput(t *testing.T) {
	err := Validate(&Config{Output: "out", Workers: 1})
	assert.ErrorIs(t, err, ErrMissingInput)

	err = Validate(&Config{Input: "  ", Output: "out", Workers: 1})
	assert.ErrorIs(t, err, ErrMissingInput)

	assert.NoError(t, Validate(&Config{Input: "a.pdf", Output: "out", Workers: 1}))
}

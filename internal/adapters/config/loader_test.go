package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/planar/internal/adapters/config"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	want := domain.DefaultConfig()
	want.Root = dir
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
version: "1"
workers: 3
queue_depth: 16
timeout: 5s
limits:
  max_nodes: 100
retry:
  max_attempts: 2
cache:
  backend: redis
  ttl: 1h
  write_back_on_hit: true
  redis:
    addr: "cache:6379"
    db: 2
server:
  cors_origins: ["https://example.org"]
log:
  json: true
`)

	cfg, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 16, cfg.QueueDepth)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, domain.Limits{MaxNodes: 100, MaxEdges: 20000}, cfg.Limits)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.Retry.InitialInterval, "unset keys keep defaults")
	assert.Equal(t, domain.CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.WriteBackOnHit)
	assert.Equal(t, domain.RedisConfig{Addr: "cache:6379", DB: 2, Prefix: domain.DefaultRedisPrefix}, cfg.Cache.Redis)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.CORSOrigins)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_WalksUpToParent(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "queue_depth: 7\n")
	nested := filepath.Join(root, "graphs", "molecules")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	cfg, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, 7, cfg.QueueDepth)
}

func TestLoad_ZeroWorkersMeansAllCores(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "workers: 0\n")

	cfg, err := newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "bad version", content: `version: "2"`, wantErr: domain.ErrInvalidConfig},
		{name: "negative workers", content: "workers: -1", wantErr: domain.ErrInvalidConfig},
		{name: "negative timeout", content: "timeout: -1s", wantErr: domain.ErrInvalidConfig},
		{name: "no attempts", content: "retry: {max_attempts: 0}", wantErr: domain.ErrInvalidConfig},
		{name: "negative limits", content: "limits: {max_edges: -5}", wantErr: domain.ErrInvalidConfig},
		{name: "unknown backend", content: "cache: {backend: memcached}", wantErr: domain.ErrUnknownCacheBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := newLoader(t).Load(dir)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "workers: [unterminated")

	_, err := newLoader(t).Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigParseFailed.Error())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := newLoader(t).LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), domain.ErrConfigReadFailed.Error())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: debug
neo4j:
  enabled: true
  uri: "bolt://graph:7687"
  user: "neo4j"
  password: "secret"
extraction:
  profile: lenient
  maximum_position_gap: 4
  min_path_length: 3
  max_path_length: 8
  persist_graph: true
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.Neo4j.Enabled)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, ProfileLenient, cfg.Extraction.Profile)
	assert.Equal(t, 15.0, cfg.Extraction.StartThreshold())
	assert.Equal(t, 4, cfg.Extraction.MaximumPositionGap)
	assert.Equal(t, 3, cfg.Extraction.MinPathLength)
	assert.Equal(t, 8, cfg.Extraction.MaxPathLength)
	assert.True(t, cfg.Extraction.PersistGraph)
	assert.Equal(t, DefaultNeo4jDatabase, cfg.Neo4j.Database, "defaults fill unset fields")
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	def := NewDefaultConfig()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Extraction, cfg.Extraction)
	assert.Equal(t, def.Kafka.SubmitTopic, cfg.Kafka.SubmitTopic)
	assert.False(t, cfg.Neo4j.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server: ["))
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "extraction:\n  max_path_length: 1\n  min_path_length: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OPINION_SERVER_PORT", "9999")
	t.Setenv("OPINION_EXTRACTION_AVERAGE_START_POSITION_THRESHOLD", "7.5")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 7.5, cfg.Extraction.StartThreshold())
}

func TestLoad_ExplicitZeroThreshold(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, "extraction:\n  profile: lenient\n  average_start_position_threshold: 0\n  max_candidates: 250\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Extraction.AverageStartPositionThreshold)
	assert.Equal(t, 0.0, cfg.Extraction.StartThreshold())
	assert.Equal(t, 250, cfg.Extraction.MaxCandidates)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OPINION_EXTRACTION_PROFILE", "lenient")
	t.Setenv("OPINION_REDIS_ENABLED", "true")
	t.Setenv("OPINION_REDIS_ADDR", "cache:6379")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProfileLenient, cfg.Extraction.Profile)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

//Personal.AI order the ending

package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
	"github.com/turtacn/OpinionGraph/internal/config"
	"github.com/turtacn/OpinionGraph/internal/testutil"
)

func phoneInput() *extraction.Input {
	return &extraction.Input{
		Sentences: []string{testutil.PhoneSentence0, testutil.PhoneSentence1},
		Source:    "test",
	}
}

func TestConnect_AllDisabled(t *testing.T) {
	infra, err := Connect(context.Background(), config.NewDefaultConfig(), nil)
	require.NoError(t, err)
	defer infra.Close(context.Background())

	assert.Nil(t, infra.Collector)
	assert.Nil(t, infra.Neo4j)
	assert.Nil(t, infra.Redis)
	assert.Nil(t, infra.MinIO)
	assert.Empty(t, infra.HealthCheckers())

	p, err := infra.Pipeline()
	require.NoError(t, err)
	report, err := p.Extract(context.Background(), phoneInput())
	require.NoError(t, err)
	assert.Len(t, report.Phrases, 8)
	assert.Equal(t, "readable", report.Settings.Tagger)
}

func TestConnect_Metrics(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Metrics.Enabled = true

	infra, err := Connect(context.Background(), cfg, testutil.NewMockLogger())
	require.NoError(t, err)
	require.NotNil(t, infra.Collector)
	require.NotNil(t, infra.Metrics)

	p, err := infra.Pipeline()
	require.NoError(t, err)
	_, err = p.Extract(context.Background(), phoneInput())
	require.NoError(t, err)
}

func TestConnect_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.NewDefaultConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	infra, err := Connect(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close(context.Background())
	require.NotNil(t, infra.Redis)
	require.Len(t, infra.HealthCheckers(), 1)
	assert.Equal(t, "redis", infra.HealthCheckers()[0].Name())
	assert.NoError(t, infra.HealthCheckers()[0].Check(context.Background()))

	p, err := infra.Pipeline()
	require.NoError(t, err)
	first, err := p.Extract(context.Background(), phoneInput())
	require.NoError(t, err)
	second, err := p.Extract(context.Background(), phoneInput())
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Len(t, mr.Keys(), 1)
}

func TestConnect_FailureClosesOpened(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.NewDefaultConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	cfg.MinIO.Enabled = true
	cfg.MinIO.Endpoint = ""

	_, err := Connect(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestConnect_Neo4jUnsupportedScheme(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Neo4j.Enabled = true
	cfg.Neo4j.URI = "ftp://localhost:7687"

	_, err := Connect(context.Background(), cfg, nil)
	require.Error(t, err)
}

//Personal.AI order the ending

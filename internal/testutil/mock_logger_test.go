package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("graph built", logging.Int("nodes", 3))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "graph built", messages[0].Message)

	v, ok := logger.FieldValue("graph built", "nodes")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("persist failed")
	assert.True(t, logger.HasMessage("error", "persist failed"))
	assert.False(t, logger.HasMessage("info", "graph built"))
}

//Personal.AI order the ending

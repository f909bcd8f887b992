package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/threadline/internal/infrastructure/logger"
)

func TestLogCommentCreated(t *testing.T) {
	var buf bytes.Buffer
	al := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := logger.WithRequestID(context.Background(), "req-1")
	al.LogCommentCreated(ctx, "alice1", "7", "0")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "create", line["action"])
	assert.Equal(t, "comment", line["resource"])
	assert.Equal(t, "7", line["resource_id"])
	assert.Equal(t, "alice1", line["username"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "parent=0", line["details"])
}

package core

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestAudit_RecordsOrigin(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	uploadExpected(t, svc)
	buf := captureLogs(t)

	ctx := WithOrigin(context.Background(), Origin{Station: "dock-2", Operator: "op-7", Client: "console"})
	_, err := svc.Scan(ctx, "ST1/BK/M")
	require.NoError(t, err)

	rec := lastRecord(t, buf)
	assert.Equal(t, "audit", rec["msg"])
	assert.Equal(t, "scan", rec["action"])
	assert.Equal(t, "low", rec["severity"])
	assert.Equal(t, "dock-2", rec["station"])
	assert.Equal(t, "op-7", rec["operator"])
	assert.Equal(t, "console", rec["client"])
	assert.NotContains(t, rec, "ip", "empty fields are omitted")
	assert.Equal(t, svc.SessionID(), rec["session_id"])
}

func TestOriginFromContext_Missing(t *testing.T) {
	assert.Equal(t, Origin{}, OriginFromContext(context.Background()))
	assert.Empty(t, Origin{}.logAttrs())
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger_StaticAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Level:        "debug",
		Format:       "json",
		Output:       &buf,
		ServiceName:  "analytics",
		Environment:  "test",
		PolicySource: "/etc/analytics/policy.yaml",
	})

	logger.Debug("policy loaded", "elapsed", 1500*time.Microsecond)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "analytics", entry["service"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "/etc/analytics/policy.yaml", entry["policy_source"])
	assert.Equal(t, 1.5, entry["elapsed_ms"])
	assert.NotContains(t, entry, "elapsed")
}

func TestNewLogger_DefaultPolicySource(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(Config{Format: "json", Output: &buf}).Info("x")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "default", entry["policy_source"])
	assert.NotContains(t, entry, "environment")
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "WARN", Format: "text", Output: &buf})

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestAddFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: "json", Output: &buf}).With("component", "report_service")

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithFields(ctx)
	Caller(ctx, "lead", "supervisor")
	Technician(ctx, "Ana")
	ReportID(ctx, "r-1")
	Technician(ctx, "Bruno")

	logger.InfoContext(ctx, "report built", "tickets", 3)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "report_service", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "lead", entry["caller"])
	assert.Equal(t, "supervisor", entry["role"])
	assert.Equal(t, "Bruno", entry["technician"])
	assert.Equal(t, "r-1", entry["report_id"])
	assert.EqualValues(t, 3, entry["tickets"])
}

func TestAddFields_WithoutBag(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: "json", Output: &buf})

	ctx := context.Background()
	ReportID(ctx, "r-1")
	logger.InfoContext(ctx, "x")

	assert.NotContains(t, decodeLine(t, &buf), "report_id")
	assert.Equal(t, "", GetRequestID(ctx))
}

func TestAddFields_Concurrent(t *testing.T) {
	ctx := WithFields(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			AddFields(ctx, "worker", i)
		}()
	}
	wg.Wait()

	bag := ctx.Value(fieldsKey).(*fieldBag)
	require.Len(t, bag.snapshot(), 1)
	assert.Equal(t, "worker", bag.snapshot()[0].Key)
}

func TestLogPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: "json", Output: &buf})

	LogPanic(WithRequestID(context.Background(), "req-7"), logger, "boom")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "panic recovered", entry["msg"])
	assert.Equal(t, "boom", entry["panic"])
	assert.Equal(t, "req-7", entry["request_id"])
	assert.Contains(t, entry["stack_trace"], "TestLogPanic")
}

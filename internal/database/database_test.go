package database

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"nex/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestQueryOperation(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{`SELECT * FROM "posts"`, "select"},
		{`INSERT INTO "likes" ("user_id","post_id") VALUES (1,2)`, "insert"},
		{`UPDATE "notifications" SET "read"=true`, "update"},
		{`DELETE FROM "reposts" WHERE id = 1`, "delete"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, queryOperation(tt.sql), "sql %q", tt.sql)
	}
}

func TestQueryTable(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{`SELECT * FROM "posts" WHERE id = 1`, "posts"},
		{`INSERT INTO "likes" ("user_id") VALUES (1)`, "likes"},
		{`UPDATE "notifications" SET "read"=true`, "notifications"},
		{`SELECT count(*) FROM users u JOIN follows f ON u.id = f.follower_id`, "users"},
		{`PRAGMA foreign_keys`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, queryTable(tt.sql), "sql %q", tt.sql)
	}
}

func TestTraceRecordsQueryLatency(t *testing.T) {
	l := &slogGormLogger{
		logger: slog.Default(),
		Config: logger.Config{LogLevel: logger.Warn},
	}

	before := testutil.CollectAndCount(observability.DatabaseQueryLatency)
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT * FROM "posts"`, 3
	}, nil)
	after := testutil.CollectAndCount(observability.DatabaseQueryLatency)

	assert.Greater(t, after, before, "Trace should observe the query latency histogram")
}

func TestTraceSilentSkipsMetrics(t *testing.T) {
	l := &slogGormLogger{
		logger: slog.Default(),
		Config: logger.Config{LogLevel: logger.Silent},
	}

	before := testutil.CollectAndCount(observability.DatabaseQueryLatency)
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT * FROM "users"`, 1
	}, nil)
	after := testutil.CollectAndCount(observability.DatabaseQueryLatency)

	assert.Equal(t, before, after)
}

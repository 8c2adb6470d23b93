package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedSecurityLogger() (*SecurityLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSecurityLogger(slog.New(slog.NewJSONHandler(&buf, nil))), &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown", slog.String("k", "v"))
	entry := decode(t, &buf)
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])
}

func TestSecurityLogger_Events(t *testing.T) {
	tests := []struct {
		name      string
		log       func(s *SecurityLogger)
		msg       string
		eventType string
		fields    map[string]any
	}{
		{
			name:      "auth failure",
			log:       func(s *SecurityLogger) { s.AuthFailure("192.168.1.1", "/api/documents", "invalid_key") },
			msg:       "authentication_failure",
			eventType: "auth_failure",
			fields:    map[string]any{"path": "/api/documents", "reason": "invalid_key"},
		},
		{
			name:      "rate limit",
			log:       func(s *SecurityLogger) { s.RateLimitExceeded("192.168.1.1", "/api/documents") },
			msg:       "rate_limit_exceeded",
			eventType: "rate_limit",
			fields:    map[string]any{"path": "/api/documents"},
		},
		{
			name:      "blocked upload",
			log:       func(s *SecurityLogger) { s.BlockedFileUpload("192.168.1.1", "setup.exe", "file extension is blocked") },
			msg:       "blocked_file_upload",
			eventType: "blocked_upload",
			fields:    map[string]any{"filename": "setup.exe", "reason": "file extension is blocked"},
		},
		{
			name:      "path traversal",
			log:       func(s *SecurityLogger) { s.PathTraversalAttempt("192.168.1.1", "/api/documents", "../etc/passwd") },
			msg:       "path_traversal_attempt",
			eventType: "path_traversal",
			fields:    map[string]any{"attempted_path": "../etc/passwd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, buf := newBufferedSecurityLogger()
			tt.log(s)

			entry := decode(t, buf)
			assert.Equal(t, "WARN", entry["level"])
			assert.Equal(t, tt.msg, entry["msg"])
			assert.Equal(t, tt.eventType, entry["event_type"])
			assert.Equal(t, "192.168.1.1", entry["ip"])
			assert.Contains(t, entry, "timestamp")
			for k, v := range tt.fields {
				assert.Equal(t, v, entry[k], k)
			}
		})
	}
}

func TestSecurityLogger_SensitiveDataNotLogged(t *testing.T) {
	s, buf := newBufferedSecurityLogger()

	s.SecurityEvent("minio_auth", "10.0.0.1", map[string]string{
		"bucket":     "uploads",
		"Secret_Key": "minio123",
		"api_key":    "abc",
	})

	entry := decode(t, buf)
	assert.Equal(t, "uploads", entry["bucket"])
	assert.NotContains(t, buf.String(), "minio123")
	assert.NotContains(t, buf.String(), "abc")
}

func TestSecurityLogger_NilIsSilent(t *testing.T) {
	var s *SecurityLogger
	assert.NotPanics(t, func() {
		s.AuthFailure("ip", "/", "reason")
		s.BlockedFileUpload("ip", "f", "reason")
	})
	assert.Nil(t, s.Logger())
}

func TestIsSensitiveKey(t *testing.T) {
	for _, k := range []string{"password", "API_KEY", "token", "access_key", "Authorization"} {
		assert.True(t, IsSensitiveKey(k), k)
	}
	for _, k := range []string{"bucket", "filename", "ip"} {
		assert.False(t, IsSensitiveKey(k), k)
	}
}

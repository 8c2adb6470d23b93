package logger

import (
	"log/slog"
	"strings"
	"time"
)

var sensitiveKeys = map[string]bool{
	"password":      true,
	"api_key":       true,
	"apikey":        true,
	"token":         true,
	"secret":        true,
	"secret_key":    true,
	"access_key":    true,
	"authorization": true,
	"auth":          true,
	"credential":    true,
	"credentials":   true,
	"session":       true,
	"cookie":        true,
}

// SecurityLogger records security-related events. Credentials are never
// logged. A nil *SecurityLogger discards every event.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger wraps logger
func NewSecurityLogger(logger *slog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger}
}

// AuthFailure logs a failed authentication attempt
func (s *SecurityLogger) AuthFailure(ip, path, reason string) {
	s.event("authentication_failure", "auth_failure", ip,
		slog.String("path", path),
		slog.String("reason", reason))
}

// RateLimitExceeded logs when a client exceeds rate limits
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	s.event("rate_limit_exceeded", "rate_limit", ip,
		slog.String("path", path))
}

// BlockedFileUpload logs an upload refused by file validation
func (s *SecurityLogger) BlockedFileUpload(ip, filename, reason string) {
	s.event("blocked_file_upload", "blocked_upload", ip,
		slog.String("filename", filename),
		slog.String("reason", reason))
}

// PathTraversalAttempt logs a storage key that tried to leave its root
func (s *SecurityLogger) PathTraversalAttempt(ip, path, attemptedPath string) {
	s.event("path_traversal_attempt", "path_traversal", ip,
		slog.String("path", path),
		slog.String("attempted_path", attemptedPath))
}

// SecurityEvent logs a generic security event. Detail keys that may
// hold credentials are dropped.
func (s *SecurityLogger) SecurityEvent(eventType, ip string, details map[string]string) {
	attrs := make([]any, 0, len(details))
	for k, v := range details {
		if IsSensitiveKey(k) {
			continue
		}
		attrs = append(attrs, slog.String(k, v))
	}
	s.event("security_event", eventType, ip, attrs...)
}

// Logger returns the underlying logger
func (s *SecurityLogger) Logger() *slog.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

func (s *SecurityLogger) event(msg, eventType, ip string, attrs ...any) {
	if s == nil || s.logger == nil {
		return
	}
	base := []any{
		slog.String("event_type", eventType),
		slog.String("ip", ip),
		slog.Time("timestamp", time.Now().UTC()),
	}
	s.logger.Warn(msg, append(base, attrs...)...)
}

// IsSensitiveKey reports whether a detail key may hold credentials
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldFingerprint is the structured log field key for the message fingerprint.
	FieldFingerprint = "fingerprint"
	// FieldSender is the structured log field key for the message sender.
	FieldSender = "sender"
	// FieldState is the structured log field key for the conversation state.
	FieldState = "conversation_state"
	// FieldStatus is the structured log field key for the decision status.
	FieldStatus = "decision_status"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// MessageFields returns standard zap fields identifying the message a log
// entry belongs to. Empty values are ignored to keep entries compact.
func MessageFields(fingerprint, sender string) []zap.Field {
	return StringFields(
		StringField{Key: FieldFingerprint, Value: fingerprint},
		StringField{Key: FieldSender, Value: sender},
	)
}

// WithMessageFields attaches the common message fields to the provided
// logger. If the logger is nil, a no-op logger is created to avoid panics.
func WithMessageFields(logger *zap.Logger, fingerprint, sender string) *zap.Logger {
	fields := MessageFields(fingerprint, sender)
	return WithFields(logger, fields...)
}

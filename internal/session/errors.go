package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ethogram/internal/logging"
)

var (
	ErrRead    = errors.New("read error")
	ErrPublish = errors.New("publish error")
	ErrReport  = errors.New("report error")
	ErrLocked  = errors.New("another batch is running")
)

// Wrap builds an error message that includes stage context while tagging it
// with one of the sentinel markers above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPublish
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "session failure"
	}
	return strings.Join(parts, ": ")
}

// BestEffort logs err as a warning and swallows it. A nil err is a no-op.
func BestEffort(logger *slog.Logger, operation string, err error, attrs ...logging.Attr) {
	if err == nil {
		return
	}
	attrs = append(attrs,
		logging.String("operation", operation),
		logging.Error(err),
	)
	if !logging.HasAttrKey(attrs, logging.FieldImpact) {
		attrs = append(attrs, logging.String(logging.FieldImpact, "session outcome unchanged; side effect skipped"))
	}
	logging.WarnWithContext(logger, operation+" failed", "best_effort_failed", attrs...)
}

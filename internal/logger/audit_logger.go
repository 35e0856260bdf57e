package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger records every derived value that relied on a configuration
// default, so the affected rows can be traced later.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogFallback logs one scoring fallback.
func (al *AuditLogger) LogFallback(kind, scope string, eventID, riderID, classID int64, tablesVersion, detail string) {
	al.WithFields(logrus.Fields{
		"fallback":       kind,
		"scope":          scope,
		"event_id":       eventID,
		"rider_id":       riderID,
		"class_id":       classID,
		"tables_version": tablesVersion,
	}).Warn(detail)
}

// LogTablesReloaded logs a scoring tables swap.
func (al *AuditLogger) LogTablesReloaded(path, oldVersion, newVersion string) {
	al.WithFields(logrus.Fields{
		"path":        path,
		"old_version": oldVersion,
		"new_version": newVersion,
	}).Info("Scoring tables reloaded")
}

// LogTablesRejected logs a scoring tables file that failed to load.
func (al *AuditLogger) LogTablesRejected(path string, err error) {
	al.WithField("path", path).WithError(err).Error("Scoring tables rejected, keeping previous version")
}

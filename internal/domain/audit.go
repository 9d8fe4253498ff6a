package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the audited entity.
type EntityType string

const (
	EntityTypeQuote  EntityType = "QUOTE"
	EntityTypeReport EntityType = "REPORT"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	return e == EntityTypeQuote || e == EntityTypeReport
}

// AuditAction is the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate    AuditAction = "CREATE"
	AuditActionReanalyze AuditAction = "REANALYZE"
	AuditActionFeedback  AuditAction = "FEEDBACK"
	AuditActionUpgrade   AuditAction = "UPGRADE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionReanalyze, AuditActionFeedback, AuditActionUpgrade:
		return true
	}
	return false
}

// AuditRecord logs a mutation on a quote or report.
type AuditRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	EntityType EntityType
	EntityID   *uuid.UUID
	Action     AuditAction
	Changes    map[string]any
	CreatedAt  time.Time
}

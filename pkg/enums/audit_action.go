package enums

import "fmt"

// AuditAction describes the allowed values for the `action` column in audit_logs.
type AuditAction string

const (
	AuditActionManualUpdate AuditAction = "MANUAL_UPDATE"
	AuditActionTransfer     AuditAction = "TRANSFER"
	AuditActionSale         AuditAction = "SALE"
)

var validAuditActions = []AuditAction{
	AuditActionManualUpdate,
	AuditActionTransfer,
	AuditActionSale,
}

// IsValid reports whether the value matches the canonical audit action enum.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts the raw string to AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

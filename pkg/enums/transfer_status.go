package enums

import "fmt"

// TransferStatus tracks the lifecycle of a stock transfer. Transfers commit
// atomically, so COMPLETED is the only status produced in the current flow.
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "COMPLETED"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusCompleted,
}

// IsValid reports whether the value matches the canonical transfer status enum.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransferStatus converts the raw string to TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}

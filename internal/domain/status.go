package domain

import "strings"

// TransferStatus is the approval state of a transfer. It is the only mutable
// piece of transfer data and is owned exclusively by the workflow.
type TransferStatus string

const (
	StatusPending  TransferStatus = "pending"
	StatusApproved TransferStatus = "approved"
	StatusRejected TransferStatus = "rejected"
)

var transferStatuses = map[string]TransferStatus{
	"pending":  StatusPending,
	"approved": StatusApproved,
	"rejected": StatusRejected,
}

// ParseTransferStatus returns the status for a given label (case-insensitive).
func ParseTransferStatus(label string) (TransferStatus, bool) {
	status, ok := transferStatuses[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

func (s TransferStatus) String() string {
	return string(s)
}

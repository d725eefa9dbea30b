// Package workflow implements the transfer approval state machine. A transfer
// is pending, approved or rejected; none of the states is terminal, so a human
// can override any earlier decision.
package workflow

import (
	"errors"
	"sync"

	"github.com/retailpulse/backend-go/internal/domain"
)

// ErrTransferNotFound is returned for operations referencing a transfer that
// is not part of the loaded batch. Operations never create entries implicitly.
var ErrTransferNotFound = errors.New("transfer not found")

// Counts are the derived status totals. They are computed from the
// authoritative per-transfer map on every call, never stored separately.
type Counts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Workflow owns the status of every transfer in the current batch, keyed by
// the transfer's natural key. Mutations are serialized by a single write lock;
// readers always observe a consistent snapshot.
type Workflow struct {
	mu     sync.RWMutex
	order  []domain.TransferKey
	status map[domain.TransferKey]domain.TransferStatus
}

// New builds a workflow over a transfer batch. Every transfer starts pending.
// Duplicate natural keys collapse into a single entry.
func New(transfers []domain.Transfer) *Workflow {
	w := &Workflow{}
	w.Reset(transfers)

	return w
}

// Reset replaces the tracked batch. Prior statuses do not survive: a reload
// starts every transfer back at pending.
func (w *Workflow) Reset(transfers []domain.Transfer) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.order = w.order[:0]
	w.status = make(map[domain.TransferKey]domain.TransferStatus, len(transfers))
	for _, t := range transfers {
		key := t.Key()
		if _, ok := w.status[key]; ok {
			continue
		}
		w.order = append(w.order, key)
		w.status[key] = domain.StatusPending
	}
}

// Approve marks the transfer approved, clearing any prior rejection. Exactly
// one status holds per transfer at any time.
func (w *Workflow) Approve(key domain.TransferKey) error {
	return w.set(key, domain.StatusApproved)
}

// Reject marks the transfer rejected, clearing any prior approval.
func (w *Workflow) Reject(key domain.TransferKey) error {
	return w.set(key, domain.StatusRejected)
}

func (w *Workflow) set(key domain.TransferKey, status domain.TransferStatus) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.status[key]; !ok {
		return ErrTransferNotFound
	}
	w.status[key] = status

	return nil
}

// BulkApprove approves the snapshot of transfers that are pending at call
// time and returns how many were approved. Nothing ever reverts to pending,
// so the snapshot cannot grow mid-call.
func (w *Workflow) BulkApprove() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	approved := 0
	for _, key := range w.order {
		if w.status[key] == domain.StatusPending {
			w.status[key] = domain.StatusApproved
			approved++
		}
	}

	return approved
}

// StatusOf returns the transfer's current status.
func (w *Workflow) StatusOf(key domain.TransferKey) (domain.TransferStatus, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status, ok := w.status[key]
	if !ok {
		return "", ErrTransferNotFound
	}

	return status, nil
}

// Counts derives the aggregate status totals for the batch.
func (w *Workflow) Counts() Counts {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var c Counts
	for _, status := range w.status {
		switch status {
		case domain.StatusApproved:
			c.Approved++
		case domain.StatusRejected:
			c.Rejected++
		default:
			c.Pending++
		}
	}

	return c
}

// Statuses returns a copy of the full status map for read-only joins against
// the transfer collection.
func (w *Workflow) Statuses() map[domain.TransferKey]domain.TransferStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[domain.TransferKey]domain.TransferStatus, len(w.status))
	for key, status := range w.status {
		out[key] = status
	}

	return out
}

// Size is the number of distinct transfers in the batch.
func (w *Workflow) Size() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.order)
}

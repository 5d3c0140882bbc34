// Package sheets defines the outbound port for mirroring the ledger to
// a spreadsheet.
package sheets

import (
	"context"

	"tally/internal/core"
)

// Mirror receives full ledger snapshots. The ledger is small enough
// that replacing the whole sheet beats tracking per-row deltas.
type Mirror interface {
	Replace(ctx context.Context, txns []core.Transaction) error
}

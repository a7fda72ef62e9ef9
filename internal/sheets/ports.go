package sheets

import "context"

// BudgetSnapshotRow is one category line of a monthly budget snapshot.
type BudgetSnapshotRow struct {
	Month         string
	Group         string
	Category      string
	AssignedCents int64
	SpentCents    int64
}

// BudgetSnapshotWriter is the outbound port the audit worker exports
// monthly snapshots through.
type BudgetSnapshotWriter interface {
	// AppendSnapshot appends the rows and returns a reference to where
	// they landed.
	AppendSnapshot(ctx context.Context, rows []BudgetSnapshotRow) (ref string, err error)
}

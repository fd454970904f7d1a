package xlsx

import "github.com/startupcfo/mayordomo/internal/schema"

// MergePlan captures every row-index decision of a merge as plain data.
// It is computed purely from the scanned identity column so the decisions
// are unit-testable without a workbook, and the applier performs no index
// arithmetic of its own.
type MergePlan struct {
	// SentinelRow is the 1-based row of the canonical sentinel, 0 when the
	// artifact has none.
	SentinelRow int
	// DuplicateRows lists extra sentinel rows to delete, highest first so
	// earlier indices stay valid while deleting.
	DuplicateRows []int
	// InsertRow is the 1-based row where the new block is inserted.
	InsertRow int
	// RecheckRow is the row to re-test after inserting n rows; a sentinel
	// found anywhere other than here is a leftover artifact to delete.
	RecheckRow int
	// Append is set when no sentinel was found and the block goes one past
	// the last existing row.
	Append bool
}

// RewriteRows returns the 1-based rows of existing data to rewrite from the
// normalized ledger: everything strictly between the header and the
// insertion point.
func (p MergePlan) RewriteRows() (first, last int) {
	if p.InsertRow <= 2 {
		return 0, -1
	}
	return 2, p.InsertRow - 1
}

// PlanMerge scans the identity column (index 0 holds row 1, the header) and
// decides where n new records go. The first sentinel encountered is
// canonical; all others are collapsed.
func PlanMerge(idColumn []string, n int) MergePlan {
	var plan MergePlan
	for i := 1; i < len(idColumn); i++ { // row 1 is the header
		if schema.IsSentinel(idColumn[i]) {
			row := i + 1
			if plan.SentinelRow == 0 {
				plan.SentinelRow = row
			} else {
				// Prepend keeps the list in descending order.
				plan.DuplicateRows = append([]int{row}, plan.DuplicateRows...)
			}
		}
	}

	if plan.SentinelRow == 0 {
		plan.Append = true
		plan.InsertRow = len(idColumn) + 1
	} else {
		plan.InsertRow = plan.SentinelRow
	}
	plan.RecheckRow = plan.InsertRow + n

	return plan
}

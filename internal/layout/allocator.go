// Package layout owns the console's column state: which of the four
// workspace columns are normal, collapsed or maximized, how wide each
// visible column renders, and how that state is persisted per operator
// role and kept in sync across observers.
package layout

// ColumnID identifies one of the four workspace columns.
type ColumnID string

// The four workspace columns. The string values are part of the
// persisted layout format and must not change.
const (
	ColumnCustomer     ColumnID = "customer"
	ColumnEmbedded     ColumnID = "embedded"
	ColumnSpaceCopilot ColumnID = "spaceCopilot"
	ColumnKMS          ColumnID = "kms"
)

// Columns lists every column in canonical order.
var Columns = []ColumnID{ColumnCustomer, ColumnEmbedded, ColumnSpaceCopilot, ColumnKMS}

// ColumnState is the display state of a single column.
type ColumnState string

const (
	StateNormal    ColumnState = "normal"
	StateCollapsed ColumnState = "collapsed"
	StateMaximized ColumnState = "maximized"
)

// Allocation maps each column to an integer percentage width. Only the
// entries for currently visible columns are meaningful; the rest carry
// the table's placeholder values.
type Allocation map[ColumnID]int

// defaultAllocation is the neutral split used for zero visible columns
// (a defensive value that is never rendered) and for all four visible.
func defaultAllocation() Allocation {
	return Allocation{
		ColumnCustomer:     25,
		ColumnEmbedded:     35,
		ColumnKMS:          20,
		ColumnSpaceCopilot: 20,
	}
}

// pairAllocations is the fixed lookup for exactly two visible columns,
// keyed by the visible pair in canonical column order. Values for the
// two visible columns sum to 100; the other two entries are carried
// placeholders.
var pairAllocations = map[[2]ColumnID]Allocation{
	{ColumnCustomer, ColumnEmbedded}:     {ColumnCustomer: 40, ColumnEmbedded: 60, ColumnKMS: 50, ColumnSpaceCopilot: 50},
	{ColumnCustomer, ColumnKMS}:          {ColumnCustomer: 60, ColumnEmbedded: 50, ColumnKMS: 40, ColumnSpaceCopilot: 50},
	{ColumnCustomer, ColumnSpaceCopilot}: {ColumnCustomer: 60, ColumnEmbedded: 50, ColumnKMS: 50, ColumnSpaceCopilot: 40},
	{ColumnEmbedded, ColumnKMS}:          {ColumnCustomer: 50, ColumnEmbedded: 60, ColumnKMS: 40, ColumnSpaceCopilot: 50},
	{ColumnEmbedded, ColumnSpaceCopilot}: {ColumnCustomer: 50, ColumnEmbedded: 60, ColumnKMS: 50, ColumnSpaceCopilot: 40},
	{ColumnKMS, ColumnSpaceCopilot}:      {ColumnCustomer: 50, ColumnEmbedded: 50, ColumnKMS: 50, ColumnSpaceCopilot: 50},
}

// tripleAllocations is the fixed lookup for exactly three visible
// columns, keyed by the single absent column. The rows are literal
// values from the upstream visual-parity table; the absent column's
// entry is a placeholder and is intentionally not corrected.
var tripleAllocations = map[ColumnID]Allocation{
	ColumnCustomer:     {ColumnCustomer: 33, ColumnEmbedded: 40, ColumnKMS: 30, ColumnSpaceCopilot: 30},
	ColumnEmbedded:     {ColumnCustomer: 40, ColumnEmbedded: 33, ColumnKMS: 30, ColumnSpaceCopilot: 30},
	ColumnKMS:          {ColumnCustomer: 35, ColumnEmbedded: 40, ColumnKMS: 33, ColumnSpaceCopilot: 25},
	ColumnSpaceCopilot: {ColumnCustomer: 35, ColumnEmbedded: 40, ColumnKMS: 25, ColumnSpaceCopilot: 33},
}

// Allocate derives percentage widths for the given set of visible
// columns. It is a pure function of the visible set; column state
// (normal/collapsed/maximized) is resolved by the caller before
// consulting the allocator.
func Allocate(visible []ColumnID) Allocation {
	seen := make(map[ColumnID]bool, len(visible))
	ordered := make([]ColumnID, 0, len(visible))
	for _, id := range Columns {
		for _, v := range visible {
			if v == id && !seen[id] {
				seen[id] = true
				ordered = append(ordered, id)
			}
		}
	}

	switch len(ordered) {
	case 0:
		return defaultAllocation()
	case 1:
		alloc := defaultAllocation()
		alloc[ordered[0]] = 100
		return alloc
	case 2:
		alloc := pairAllocations[[2]ColumnID{ordered[0], ordered[1]}]
		return cloneAllocation(alloc)
	case 3:
		for _, id := range Columns {
			if !seen[id] {
				return cloneAllocation(tripleAllocations[id])
			}
		}
	}
	return defaultAllocation()
}

func cloneAllocation(a Allocation) Allocation {
	out := make(Allocation, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

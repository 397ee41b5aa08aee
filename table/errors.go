package table

import "errors"

var (
	// ErrCorruptTable is returned when an SST's footer, meta region, or
	// block count fails to validate on Open.
	ErrCorruptTable = errors.New("table: corrupt")

	// ErrOversizedEntry is returned by SsTableBuilder.Add when a single
	// key-value pair exceeds the block budget on its own — no spillover
	// block is created for it.
	ErrOversizedEntry = errors.New("table: entry too large for block size")
)

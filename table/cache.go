package table

// BlockCache is the opaque handle for a designated but
// unimplemented extension point: the SST open path may carry one, but the
// core never has to consult it. A future cache implementation plugged in
// here must return Blocks byte-identical to SsTable.ReadBlock.
type BlockCache struct{}

// Command sstdump opens a single SsTable file and prints its block-meta
// index and, optionally, a full key scan, for manual inspection while
// developing against the on-disk format.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kvsst/lsmtable/table"
)

func main() {
	scan := flag.Bool("scan", false, "also print every key in the table")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-scan] <sstable-path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *scan); err != nil {
		fmt.Fprintf(os.Stderr, "sstdump: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, scan bool) error {
	sst, err := table.OpenTable(path, nil)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer sst.Close()

	fmt.Printf("blocks: %d\n", sst.NumOfBlocks())
	for i, m := range sst.BlockMetas() {
		fmt.Printf("  block %d: offset=%d first_key=%q\n", i, m.Offset, m.FirstKey)
	}

	if !scan {
		return nil
	}

	it, err := table.NewIteratorAtFirst(sst)
	if err != nil {
		return fmt.Errorf("seek to first: %w", err)
	}

	fmt.Println("entries:")
	for it.IsValid() {
		fmt.Printf("  %q -> %q\n", it.Key(), it.Value())
		if err := it.Next(); err != nil {
			return fmt.Errorf("next: %w", err)
		}
	}
	return nil
}

// Command flockwatch runs the export pipelines against files on disk.
//
//	flockwatch parse --dir ./exports --format yaml --where "birds_affected > 1000000"
//	flockwatch version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

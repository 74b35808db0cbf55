// Package main provides the opcheck CLI, which runs the elementwise operator
// checks with seeded inputs and reports the results.
package main

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func main() {
	err := NewRootCmd().Execute()
	klog.Flush()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}

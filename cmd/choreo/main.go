// Command choreo runs the multi-role orchestration engine from the command
// line: load configuration, bind the configured roles and execute one input
// through the configured topology.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command assetproxy runs the asset proxy as a standalone process,
// reading its settings from a YAML config file and flag overrides.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

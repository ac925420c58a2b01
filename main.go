// Package main is the entry point for the clutchmetrics CLI, which fetches
// FEB play-by-play feeds and computes clutch-time basketball metrics.
package main

import "github.com/pable/go-clutch-metrics/cmd"

func main() {
	cmd.Execute()
}

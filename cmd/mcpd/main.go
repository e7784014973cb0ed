package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "mcpd"}

	root.AddCommand(serveCMD(), updateLabelsCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "tzsched",
		Short:   "World time scheduling table - compare local times across zones",
		Version: version,
	}

	rootCmd.AddCommand(tableCmd())
	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(rowCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

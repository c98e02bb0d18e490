package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ingestd",
	Short: "An append-only binary record log over HTTP",
	Long: `An append-only binary record log exposed over HTTP. Producers append
immutable byte-string records, consumers replay them sequentially by
numeric offset via Link-header pagination.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("couldn't execute app,", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Command graph-server runs the update-graph service: a periodic
// scraper feeding a per-request policy pipeline over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logger = logrus.New()

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "graph-server",
	Short:   "Serves a per-client-filtered update graph for an image-based OS stream",
	Version: "dev",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionsCmd)
}

package main

import (
	"log"

	"github.com/absmach/fedlearn/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fedclient",
		Short: "Federated learning client",
		Long:  `fedclient trains a local model on a private data partition and exchanges parameters with a federated-learning coordinator.`,
	}

	rootCmd.AddCommand(
		cli.NewStartCmd(),
		cli.NewDryRunCmd(),
		cli.NewCheckpointsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

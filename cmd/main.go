package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Run() error {
	ctx := context.Background()

	cmd := &cobra.Command{
		Use:   "coinshelf",
		Short: "entitlement and monetization engine for serialized fiction",
	}

	cmd.AddCommand(HTTPCommand(ctx))
	cmd.AddCommand(SweepCommand(ctx))

	if err := cmd.Execute(); err != nil {
		return err
	}

	return nil
}

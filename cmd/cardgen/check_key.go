package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/studycardflow/internal/generation"
)

func newCheckKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-key",
		Short: "Verify that the configured API key can reach the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newRESTClient()
			if err != nil {
				return err
			}
			if err := client.Ping(cmd.Context()); err != nil {
				var svcErr *generation.ServiceError
				if errors.As(err, &svcErr) {
					return fmt.Errorf("key rejected (HTTP %d %s): %s", svcErr.Status, svcErr.Code, svcErr.Message)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key OK for %s\n", a.cfg.Generator.Model)
			return nil
		},
	}
}

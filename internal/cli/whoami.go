package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmorken/kinsource/internal/client"
)

var whoamiToken string

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the name of the user the access token belongs to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cfg := buildConfig(whoamiToken, 0, "", 0, true, false)
		if err := requireToken(cfg); err != nil {
			return err
		}

		c, err := client.New(cfg)
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}

		name, err := c.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("fetch current user: %w", err)
		}

		fmt.Println(name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)

	whoamiCmd.Flags().StringVar(&whoamiToken, "token", "", "API access token (overrides FS_ACCESS_TOKEN)")
}

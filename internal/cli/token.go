package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fernet/fernet-go"
	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-radar/internal/config"
)

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the encrypted market-data provider token",
	}

	var secret string
	encrypt := &cobra.Command{
		Use:   "encrypt TOKEN",
		Short: "Encrypt a provider token for BRAPI_TOKEN_ENCRYPTED",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("SECRET_KEY")
			}
			if secret == "" {
				return errors.New("a key is required: pass --secret or set SECRET_KEY")
			}

			tok, err := config.EncryptToken(args[0], secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	encrypt.Flags().StringVar(&secret, "secret", "", "Base64 fernet key (defaults to SECRET_KEY)")

	generate := &cobra.Command{
		Use:   "generate-key",
		Short: "Print a new random key for SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var key fernet.Key
			if err := key.Generate(); err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.Encode())
			return nil
		},
	}

	cmd.AddCommand(encrypt, generate)
	return cmd
}

package cli

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipp01105/fastlogging/netproto"
)

// NewKeygenCommand creates the keygen command
func NewKeygenCommand() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random key",
		Long:  `Print a random base64 key for the given encryption method.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m netproto.EncryptionMethod
			if err := m.UnmarshalText([]byte(method)); err != nil {
				return err
			}
			key, err := netproto.CreateRandomKey(m)
			if err != nil {
				return err
			}
			if key == nil {
				return fmt.Errorf("method %s does not use a key", m)
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "aes", "encryption method: authkey, aes")

	return cmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankimate/ankimate/internal/credential"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set stores a key/value pair in the local database. Values for keys
ending in ".api_key" are encrypted with a machine-derived key before
being written.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]

		a, err := newApp(false)
		if err != nil {
			fail("%v", err)
		}
		defer a.close()

		if strings.HasSuffix(key, ".api_key") && !credential.IsEncrypted(value) {
			manager, err := credential.NewManager()
			if err != nil {
				fail("failed to init credential manager: %v", err)
			}
			value, err = manager.Encrypt(value)
			if err != nil {
				fail("failed to encrypt value: %v", err)
			}
		}

		if err := a.store.SetConfig(key, value); err != nil {
			fail("failed to set config: %v", err)
		}
		fmt.Printf("Configuration saved: %s\n", key)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		a, err := newApp(false)
		if err != nil {
			fail("%v", err)
		}
		defer a.close()

		val, err := a.store.GetConfig(key)
		if err != nil {
			fail("error: %v", err)
		}
		switch {
		case val == "":
			fmt.Println("(not set)")
		case credential.IsEncrypted(val):
			// Secrets are shown masked; the raw value never leaves the db.
			manager, err := credential.NewManager()
			if err != nil {
				fail("failed to init credential manager: %v", err)
			}
			plain, err := manager.Decrypt(val)
			if err != nil {
				fail("failed to decrypt value: %v", err)
			}
			fmt.Println(credential.MaskSecret(plain))
		default:
			fmt.Println(val)
		}
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	verbose      bool
	ciMode       bool
	providerType string
	modelName    string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ankimate",
	Short: "LLM-assisted Anki content assistant",
	Long: `Ankimate rewrites oversized example sentences on Anki notes into short,
learner-friendly ones. Every bulk edit is previewed first, applied only
against a single-use confirmation token, and reversible through the
sibling backup field it leaves on each note.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.ankimate/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&ciMode, "json", false, "JSON log output, non-interactive")
	RootCmd.PersistentFlags().StringVarP(&providerType, "provider", "p", "", "LLM provider (openai, ollama, gemini, anthropic, stub)")
	RootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model name (default depends on provider)")
}

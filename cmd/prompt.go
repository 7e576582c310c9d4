package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/evaluator"
)

var flagSchema bool

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the instruction sent to the model for a mode",
	Long: `Print the full instruction that accompanies the photo for the
selected evaluation mode. With --schema, print the JSON schema the model
is constrained to instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSchema {
			out, err := json.MarshalIndent(evaluator.JSONSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		mode, err := configuredMode(cfg)
		if err != nil {
			return err
		}
		fmt.Println(evaluator.BuildInstruction(mode))
		return nil
	},
}

func init() {
	promptCmd.Flags().BoolVar(&flagSchema, "schema", false, "print the response JSON schema instead of the instruction")
	rootCmd.AddCommand(promptCmd)
}

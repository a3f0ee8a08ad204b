package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/benvon/career-coach/internal/catalog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewRolesCmd creates the roles command
func NewRolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect the role catalog",
		Long:  "Print the built-in role catalog or check a catalog file before shipping it.",
	}
	cmd.AddCommand(newRolesShowCmd())
	cmd.AddCommand(newRolesValidateCmd())
	return cmd
}

func newRolesShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the built-in catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Default()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer func() { _ = enc.Close() }()
				return enc.Encode(c)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			case "text":
				for _, cat := range c.Categories() {
					fmt.Fprintf(out, "%s\n", cat.Name)
					for _, role := range cat.Roles {
						fmt.Fprintf(out, "  - %s\n", role)
					}
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (text, yaml or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, yaml or json")
	return cmd
}

func newRolesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read catalog: %w", err)
			}
			c, err := catalog.Parse(data)
			if err != nil {
				return err
			}
			roles := 0
			for _, cat := range c.Categories() {
				roles += len(cat.Roles)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d categories, %d roles, %d time options\n", len(c.Categories()), roles, len(c.TimeOptions))
			return nil
		},
	}
}

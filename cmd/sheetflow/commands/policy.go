package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sheetflow/sheetflow/pkg/policy"
)

func newPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the policy gate",
		Long: `Inspect the Rego policies the admission gate evaluates.

The gate ships with built-in policies for unsafe hyperlinks,
destructive actions, protection changes and bulk row changes, and can
load additional .rego files from the configured policy paths.`,
	}

	cmd.AddCommand(newPolicyListCommand())
	cmd.AddCommand(newPolicyShowCommand())

	return cmd
}

func newPolicyListCommand() *cobra.Command {
	var policyPaths []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded policies",
		Example: `  # List the built-in policies
  sheetflow policy list

  # Include policies from a directory
  sheetflow policy list --policy-path policies/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			gate, err := policy.NewEngine(log.Logger)
			if err != nil {
				return err
			}
			paths := append([]string{}, settings.PolicyPaths...)
			paths = append(paths, policyPaths...)
			if len(paths) > 0 {
				if err := gate.LoadPolicies(ctx, paths); err != nil {
					return err
				}
			}

			policies := gate.ListPolicies()

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(policies)
			}

			for _, p := range policies {
				state := "enabled"
				if !p.Enabled {
					state = "disabled"
				}
				fmt.Printf("%-28s %-8s %-8s %s\n", p.Name, p.Severity, state, p.Description)
			}
			fmt.Printf("%d policies\n", len(policies))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&policyPaths, "policy-path", nil, "extra policy files or directories")

	return cmd
}

func newPolicyShowCommand() *cobra.Command {
	var policyPaths []string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one policy's Rego source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			gate, err := policy.NewEngine(log.Logger)
			if err != nil {
				return err
			}
			paths := append([]string{}, settings.PolicyPaths...)
			paths = append(paths, policyPaths...)
			if len(paths) > 0 {
				if err := gate.LoadPolicies(ctx, paths); err != nil {
					return err
				}
			}

			p, err := gate.GetPolicy(args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}

			fmt.Printf("%s (%s)\n", p.Name, p.Severity)
			if p.Description != "" {
				fmt.Println(p.Description)
			}
			fmt.Println()
			fmt.Println(p.Rego)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&policyPaths, "policy-path", nil, "extra policy files or directories")

	return cmd
}

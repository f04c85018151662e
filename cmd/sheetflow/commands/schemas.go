package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheetflow/sheetflow/pkg/schema"
)

func newSchemasCommand() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "schemas [kind]",
		Short: "List registered action kinds and their schemas",
		Long: `List the registered action kinds, grouped by operation family.

With a kind argument, print that action's full schema: target form,
entity role, minimum feature level and declared parameters.`,
		Example: `  # List every registered action kind
  sheetflow schemas

  # List one family
  sheetflow schemas --family table

  # Show one action's parameters
  sheetflow schemas add_table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := schema.NewRegistry()

			if len(args) == 1 {
				return printSchema(registry, args[0])
			}

			families := schema.Families()
			if family != "" {
				families = []schema.Family{schema.Family(family)}
			}

			if jsonOutput {
				out := make(map[string][]string, len(families))
				for _, f := range families {
					out[string(f)] = registry.KindsByFamily(f)
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			total := 0
			for _, f := range families {
				kinds := registry.KindsByFamily(f)
				if len(kinds) == 0 {
					continue
				}
				fmt.Printf("%s (%d)\n", f, len(kinds))
				for _, k := range kinds {
					fmt.Printf("  %s\n", k)
				}
				total += len(kinds)
			}
			fmt.Printf("%d action kinds\n", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&family, "family", "f", "", "restrict listing to one operation family")

	return cmd
}

func printSchema(registry *schema.Registry, kind string) error {
	s, ok := registry.Lookup(kind)
	if !ok {
		return fmt.Errorf("unknown action kind: %s", kind)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(newSchemaView(s))
	}

	fmt.Printf("%s\n", s.Kind)
	fmt.Printf("  family:    %s\n", s.Family)
	fmt.Printf("  role:      %s\n", s.Role)
	fmt.Printf("  target:    %s\n", s.Target)
	if s.Entity != "" {
		fmt.Printf("  entity:    %s\n", s.Entity)
	}
	fmt.Printf("  api level: %d\n", s.MinAPILevel)
	if len(s.Params) > 0 {
		fmt.Println("  parameters:")
		for _, p := range s.Params {
			var notes []string
			if p.Required {
				notes = append(notes, "required")
			}
			if len(p.Enum) > 0 {
				notes = append(notes, "one of "+strings.Join(p.Enum, "|"))
			}
			if p.Refs != "" {
				notes = append(notes, fmt.Sprintf("references %s", p.Refs))
			}
			line := fmt.Sprintf("    %s (%s)", p.Name, p.Type)
			if len(notes) > 0 {
				line += " " + strings.Join(notes, ", ")
			}
			fmt.Println(line)
		}
	}
	return nil
}

// schemaView is the JSON shape for a single schema listing.
type schemaView struct {
	Kind        string      `json:"kind"`
	Family      string      `json:"family"`
	Role        string      `json:"role"`
	Target      string      `json:"target"`
	Entity      string      `json:"entity,omitempty"`
	MinAPILevel int         `json:"min_api_level"`
	Params      []paramView `json:"parameters,omitempty"`
}

type paramView struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Refs     string   `json:"references,omitempty"`
}

func newSchemaView(s *schema.ActionSchema) schemaView {
	v := schemaView{
		Kind:        s.Kind,
		Family:      string(s.Family),
		Role:        string(s.Role),
		Target:      string(s.Target),
		Entity:      string(s.Entity),
		MinAPILevel: s.MinAPILevel,
	}
	for _, p := range s.Params {
		v.Params = append(v.Params, paramView{
			Name:     p.Name,
			Type:     string(p.Type),
			Required: p.Required,
			Enum:     p.Enum,
			Refs:     string(p.Refs),
		})
	}
	return v
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/creativity-bench/internal/corpus"
	"github.com/giantswarm/creativity-bench/internal/prompt"
)

func newListCmd() *cobra.Command {
	var corporaDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available corpora and prompt styles",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := corpus.List(corporaDir)
			if err != nil {
				return fmt.Errorf("failed to list corpora: %w", err)
			}

			if len(names) == 0 {
				fmt.Println("No corpora found.")
			} else {
				fmt.Printf("Available corpora:\n\n")
			}
			for _, name := range names {
				c, err := corpus.Load(name, corporaDir)
				if err != nil {
					fmt.Printf("  - %s (error loading: %v)\n", name, err)
					continue
				}
				fmt.Printf("  - %s\n", name)
				fmt.Printf("    Name: %s\n", c.Name)
				fmt.Printf("    Description: %s\n", c.Description)
				fmt.Printf("    Version: %s\n", c.Version)
				fmt.Printf("    Fields: %d\n", len(c.Fields))
				fmt.Printf("    Questions: %d\n\n", c.Size())
			}

			fmt.Printf("Prompt styles:")
			for _, s := range prompt.Styles() {
				fmt.Printf(" %s", s)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&corporaDir, "corpora-dir", "", "External corpora directory")

	return cmd
}

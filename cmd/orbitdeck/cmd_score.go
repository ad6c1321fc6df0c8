package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orbitdeck/orbitdeck/internal/models"
	"github.com/orbitdeck/orbitdeck/internal/relevance"
)

func scoreCmd() *cobra.Command {
	var (
		title       string
		description string
		creator     string
		subjects    []string
	)

	cmd := &cobra.Command{
		Use:   "score [expression]",
		Short: "Score an item's relevance against a search expression",
		Long:  "Score tokenizes the search expression and the item metadata the same way the magnet field does, then prints the match score. Useful for tuning magnet score windows.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expression := args[0]
			if title == "" && description == "" && creator == "" && len(subjects) == 0 {
				return fmt.Errorf("score: at least one of --title, --description, --creator, --subject is required")
			}

			item := models.Item{
				ID:          "cli",
				Title:       title,
				Description: description,
				Creator:     creator,
				Subjects:    subjects,
			}

			queryTokens := relevance.Tokenize(expression)
			if len(queryTokens) == 0 {
				return fmt.Errorf("score: expression %q has no tokens", expression)
			}
			itemTokens := relevance.ItemTokens(item)
			score := relevance.Score(item, queryTokens)

			fmt.Printf("Expression tokens: %s\n", strings.Join(queryTokens, ", "))
			fmt.Printf("Item tokens:       %s\n", strings.Join(itemTokens, ", "))
			fmt.Printf("Score:             %.4f\n", score)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "item title")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().StringVar(&creator, "creator", "", "item creator")
	cmd.Flags().StringArrayVar(&subjects, "subject", nil, "item subject (repeatable)")
	return cmd
}

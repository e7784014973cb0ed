package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/confluence"
	"github.com/theplow-kwak/mcp-confluence/models"
	"github.com/theplow-kwak/mcp-confluence/provider"
)

// updateLabelsCMD rewrites the body of every page carrying a label with one
// model completion per page. Pages the model returns nothing for are
// skipped, not blanked.
func updateLabelsCMD() *cobra.Command {
	var cfgPath string
	var cmd = &cobra.Command{
		Use:   "update-labels <label> <prompt>",
		Short: "Rewrite all pages with a label using the LLM",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, prompt := args[0], args[1]
			cfg := config.LoadConfig(cfgPath)
			logger := log.New(log.Writer(), "[LABELS] ", log.LstdFlags)

			client, err := confluence.New(cfg.Confluence)
			if err != nil {
				return err
			}
			llm, err := provider.New(cfg.LLM)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger.Printf("searching pages with label %q", label)
			pages, err := client.SearchPages(ctx, fmt.Sprintf("label=%q", label), "")
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				logger.Printf("no pages found with label %q", label)
				return nil
			}
			logger.Printf("found %d pages, updating", len(pages))

			for _, summary := range pages {
				logger.Printf("updating %q (id %s)", summary.Title, summary.ID)
				page, err := client.GetPage(ctx, summary.ID, "body.storage,version")
				if err != nil {
					return err
				}

				fullPrompt := fmt.Sprintf("%s\n\n---\n\nExisting content:\n%s", prompt, page.Body.Storage.Value)
				newContent, err := llm.Generate(ctx, fullPrompt)
				if err != nil {
					return err
				}
				if newContent == "" {
					logger.Printf("model returned no content for %q, skipping", page.Title)
					continue
				}

				_, err = client.UpdatePage(ctx, page.ID, models.PageUpdate{
					Title:   page.Title,
					Content: newContent,
					Version: page.Version.Number,
				})
				if err != nil {
					return err
				}
			}

			logger.Printf("all page updates complete")
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}

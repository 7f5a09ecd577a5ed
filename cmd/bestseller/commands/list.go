package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/maltedev/bestseller-scraper/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list <provider>",
	Short: "Print a provider's bestseller list as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProvider(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		books, err := a.service.ListBooks(cmd.Context(), id)
		if err != nil {
			logError("%v", err)
			return err
		}

		return printJSON(models.ListResponse{Books: books})
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <provider>",
	Short: "Print a book detail record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProvider(args[0])
		if err != nil {
			return err
		}
		url, _ := cmd.Flags().GetString("url")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		detail, err := a.service.BookDetail(cmd.Context(), id, url)
		if err != nil {
			logError("%v", err)
			return err
		}

		return printJSON(detail)
	},
}

func init() {
	rootCmd.AddCommand(listCmd, detailCmd)

	detailCmd.Flags().StringP("url", "u", "", "book detail page URL (required)")
	_ = detailCmd.MarkFlagRequired("url")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

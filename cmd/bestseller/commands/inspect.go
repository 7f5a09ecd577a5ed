package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/maltedev/bestseller-scraper/internal/browser"
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/provider/all"
	"github.com/maltedev/bestseller-scraper/internal/render"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Render a page and dump its HTML and a screenshot",
	Long: `Inspect renders a page the way the scraper does and writes the resulting
HTML and a full-page screenshot, then reports how many elements each
--selector matches. With --provider the provider's detail wait plan is used.

Examples:
  bestseller inspect -u "https://www.kinokuniya.co.jp/..." -p jp \
      --selector ".dsg-product-item" --selector "h3"`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	flags := inspectCmd.Flags()
	flags.StringP("url", "u", "", "URL to inspect (required)")
	flags.StringP("provider", "p", "", "use this provider's detail wait plan")
	flags.Bool("list", false, "use the provider's list wait plan instead")
	flags.String("html", "inspect.html", "HTML output file")
	flags.String("screenshot", "inspect.png", "screenshot output file")
	flags.StringSlice("selector", nil, "CSS selector to count in the rendered HTML (repeatable)")
	flags.Bool("headful", false, "show the browser window")
	_ = inspectCmd.MarkFlagRequired("url")
}

func runInspect(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	url, _ := flags.GetString("url")
	providerID, _ := flags.GetString("provider")
	useList, _ := flags.GetBool("list")
	htmlPath, _ := flags.GetString("html")
	shotPath, _ := flags.GetString("screenshot")
	selectors, _ := flags.GetStringSlice("selector")
	headful, _ := flags.GetBool("headful")

	plan := render.Plan{render.Navigate(browser.WaitLoad, cfg.Browser.Timeout), render.Settle(5 * time.Second)}
	var so browser.SessionOptions
	if providerID != "" {
		id, err := parseProvider(providerID)
		if err != nil {
			return err
		}
		registry, err := all.Registry()
		if err != nil {
			return err
		}
		p, _ := registry.Get(id)
		ep := p.Detail
		if useList {
			ep = p.List
		}
		if ep.Mode == provider.Dynamic {
			plan = ep.Wait
		}
		so.Stealth = ep.Stealth
	}

	opts := browserOptions()
	opts.Headless = !headful
	opts.MaxSessions = 1

	launcher, err := browser.NewLauncher(opts, log)
	if err != nil {
		return err
	}
	defer launcher.Close()

	session, err := launcher.Open(cmd.Context(), so)
	if err != nil {
		return err
	}
	defer session.Close()

	page := session.Page()
	logger := log.With("session", session.ID(), "url", url)
	logger.Info("rendering page", "steps", len(plan))

	if err := render.NewRunner(logger).Run(cmd.Context(), page, url, plan); err != nil {
		return err
	}

	if err := page.Screenshot(shotPath); err != nil {
		logger.Error("failed to take screenshot", "error", err)
	} else {
		logger.Info("screenshot saved", "file", shotPath)
	}

	content, err := page.Content()
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}
	if err := os.WriteFile(htmlPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to save HTML: %w", err)
	}
	logger.Info("HTML saved", "file", htmlPath, "bytes", len(content))

	if len(selectors) == 0 {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	for _, sel := range selectors {
		found := doc.Find(sel)
		sample := strings.TrimSpace(found.First().Text())
		if r := []rune(sample); len(r) > 80 {
			sample = string(r[:80])
		}
		fmt.Fprintf(os.Stdout, "%-40s %4d  %s\n", sel, found.Length(), sample)
	}
	return nil
}

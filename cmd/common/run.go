package common

import (
	"context"
	"fmt"

	"github.com/jonesrussell/gotenders/internal/browser"
	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/scraper"
)

// RunScrape opens a browser session, runs one full scrape, and closes the
// session again. Shared by the scrape, schedule, and httpd commands.
func RunScrape(ctx context.Context, deps *Deps) (*domain.RunSummary, error) {
	session, err := browser.NewSession(ctx, browser.SessionConfig{
		Headless:          deps.Config.Browser.Headless,
		Maximized:         deps.Config.Browser.Maximized,
		DisableExtensions: deps.Config.Browser.DisableExtensions,
		DisableInfobars:   deps.Config.Browser.DisableInfobars,
		UserAgent:         deps.Config.Browser.UserAgent,
		OpTimeout:         deps.Config.Timing.OpTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("start browser session: %w", err)
	}
	defer session.Close()

	return scraper.New(session, deps.Config, deps.Logger).Run(ctx)
}

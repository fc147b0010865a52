package pages

import (
	"context"

	"github.com/quoteforge/quoteforge/internal/driver"
)

// Home drives the landing page with the account search bar
type Home struct {
	drv     *driver.Driver
	baseURL string
}

// Open navigates to the home page and settles
func (p *Home) Open(ctx context.Context) error {
	return p.drv.Goto(ctx, p.baseURL+"/home")
}

// SearchAccount types the account name into the search bar, clicks Search
// and confirms the account shows up in the result grid. The search box is a
// typeahead, so the name is typed key by key; the Search click is still
// required to commit the query to the grid.
func (p *Home) SearchAccount(ctx context.Context, name string) error {
	d := p.drv
	if err := d.FillTyped(ctx, driver.Attribute("data-test", "account-search"), name); err != nil {
		return err
	}
	if err := d.ClickWithRetry(ctx, driver.Role("button", "Search"), 3); err != nil {
		return err
	}
	if err := d.Settle(ctx); err != nil {
		return err
	}
	return d.AssertTextContains(ctx, driver.Selector(".account-results"), name)
}

// OpenAccount clicks the matching result row and waits for the account page
func (p *Home) OpenAccount(ctx context.Context, name string) error {
	d := p.drv
	if err := d.ClickWithRetry(ctx, driver.Text(name), 3); err != nil {
		return err
	}
	return d.WaitURL(ctx, driver.URLContains("/account/"), d.Timeouts().NetworkQuiet)
}

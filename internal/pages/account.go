package pages

import (
	"context"

	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/driver"
)

// Account drives the account detail page, where a new quote starts
type Account struct {
	drv *driver.Driver
}

// StartQuote opens a fresh quote from the account page and lands on the
// first wizard step
func (p *Account) StartQuote(ctx context.Context) error {
	d := p.drv
	if err := d.ClickWithRetry(ctx, driver.Role("button", "New Quote"), 3); err != nil {
		return err
	}
	return d.WaitURL(ctx, driver.URLContains("/quote/"), d.Timeouts().NetworkQuiet)
}

// FillQuoteBasics selects the producer and sets the effective date on the
// opening wizard step, then advances
func (p *Account) FillQuoteBasics(ctx context.Context, f config.AccountFixture) error {
	d := p.drv

	producer := driver.Dropdown{
		Name:    "producer",
		Trigger: driver.Attribute("formcontrolname", "producer"),
		List:    driver.Selector(".mat-select-panel"),
		Option: func(text string) driver.Target {
			return driver.Selector(`.mat-select-panel >> text="` + text + `"`)
		},
	}
	if err := d.SelectDropdown(ctx, producer, f.Producer, 3); err != nil {
		return err
	}

	if err := d.Fill(ctx, driver.Attribute("formcontrolname", "effectiveDate"), f.EffectiveDate); err != nil {
		return err
	}

	if err := d.ClickWithRetry(ctx, nextButton(), 3); err != nil {
		return err
	}
	return d.Settle(ctx)
}

package pages

import (
	"context"
	"strings"

	"github.com/quoteforge/quoteforge/internal/domain"
	"github.com/quoteforge/quoteforge/internal/driver"
)

// Premium drives the rating-result page at the end of the wizard
type Premium struct {
	drv *driver.Driver
}

// Rate requests rating and waits for the premium panel to carry a dollar
// amount. Rating is the slowest transition in the flow; the wait budget is
// the network-quiet budget, not the element budget.
func (p *Premium) Rate(ctx context.Context) error {
	d := p.drv
	if err := d.ClickWithRetry(ctx, driver.Role("button", "Rate"), 3); err != nil {
		return err
	}
	if err := d.WaitURL(ctx, driver.URLContains("/premium"), d.Timeouts().NetworkQuiet); err != nil {
		return err
	}
	return d.AssertTextContains(ctx, driver.Selector(".premium-amount"), "$")
}

// Amount reads the displayed premium
func (p *Premium) Amount(ctx context.Context) (string, error) {
	el, err := p.drv.WaitVisible(ctx, driver.Selector(".premium-amount"), p.drv.Timeouts().Element)
	if err != nil {
		return "", err
	}
	text, err := el.InnerText()
	if err != nil {
		return "", domain.SessionError("read premium", err)
	}
	amount := strings.TrimSpace(text)
	if !strings.Contains(amount, "$") {
		return "", domain.AssertionError("premium amount", "dollar amount", amount)
	}
	return amount, nil
}

package pages

import (
	"context"

	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/driver"
)

// Coverage drives the coverage-selection wizard step
type Coverage struct {
	drv *driver.Driver
}

func coverageDropdown(name, control string) driver.Dropdown {
	return driver.Dropdown{
		Name:    name,
		Trigger: driver.Attribute("formcontrolname", control),
		List:    driver.Selector(".mat-select-panel"),
		Option: func(text string) driver.Target {
			return driver.Selector(`.mat-select-panel >> text="` + text + `"`)
		},
	}
}

// Apply makes the coverage selections from the fixture. Dropdowns are
// idempotent: re-running against defaults that already match is a no-op.
func (p *Coverage) Apply(ctx context.Context, f config.CoverageFixture) error {
	d := p.drv

	if err := d.SelectDropdown(ctx, coverageDropdown("liability limit", "liabilityLimit"), f.LiabilityLimit, 3); err != nil {
		return err
	}
	if err := d.SelectDropdown(ctx, coverageDropdown("deductible", "deductible"), f.Deductible, 3); err != nil {
		return err
	}

	paperless := driver.Switch{Target: driver.Attribute("data-test", "paperless-toggle")}
	if err := d.ToggleSwitch(ctx, paperless, f.Paperless, 3); err != nil {
		return err
	}

	if err := d.ClickWithRetry(ctx, nextButton(), 3); err != nil {
		return err
	}
	return d.Settle(ctx)
}

package pages

import (
	"context"

	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/driver"
)

// Location drives the insured-location wizard step
type Location struct {
	drv *driver.Driver
}

// AddLocation fills the location form and confirms the save dialog
func (p *Location) AddLocation(ctx context.Context, f config.LocationFixture) error {
	d := p.drv

	if err := d.ClickWithRetry(ctx, driver.Role("button", "Add Location"), 3); err != nil {
		return err
	}
	if err := d.Fill(ctx, driver.Attribute("formcontrolname", "address"), f.Address); err != nil {
		return err
	}
	if err := d.Fill(ctx, driver.Attribute("formcontrolname", "city"), f.City); err != nil {
		return err
	}

	state := driver.Dropdown{
		Name:    "state",
		Trigger: driver.Attribute("formcontrolname", "state"),
		List:    driver.Selector(".mat-select-panel"),
		Option: func(text string) driver.Target {
			return driver.Selector(`.mat-select-panel >> text="` + text + `"`)
		},
	}
	if err := d.SelectDropdown(ctx, state, f.State, 3); err != nil {
		return err
	}
	if err := d.Fill(ctx, driver.Attribute("formcontrolname", "zip"), f.Zip); err != nil {
		return err
	}

	if err := d.ClickWithRetry(ctx, driver.Role("button", "Save"), 3); err != nil {
		return err
	}
	// Saving pops an address-verification dialog.
	return d.ConfirmModal(ctx, driver.Modal{
		Popup:   driver.Selector(".address-verify-dialog"),
		Confirm: driver.Role("button", "Accept"),
	})
}

// Next advances the wizard past the location step
func (p *Location) Next(ctx context.Context) error {
	if err := p.drv.ClickWithRetry(ctx, nextButton(), 3); err != nil {
		return err
	}
	return p.drv.Settle(ctx)
}

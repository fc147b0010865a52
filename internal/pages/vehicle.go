package pages

import (
	"context"

	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/driver"
)

// Vehicle drives the vehicle-schedule wizard step
type Vehicle struct {
	drv *driver.Driver
}

// AddVehicle adds one vehicle to the schedule. The VIN field is a lookup
// typeahead; year, make and model fill in from the VIN decode, and the
// fixture values assert the decode landed.
func (p *Vehicle) AddVehicle(ctx context.Context, v config.VehicleFixture) error {
	d := p.drv

	if err := d.ClickWithRetry(ctx, driver.Role("button", "Add Vehicle"), 3); err != nil {
		return err
	}

	if v.VIN != "" {
		if err := d.FillTyped(ctx, driver.Attribute("formcontrolname", "vin"), v.VIN); err != nil {
			return err
		}
		if err := d.Settle(ctx); err != nil {
			return err
		}
		if v.Make != "" {
			if err := d.AssertTextContains(ctx, driver.Selector(".vehicle-decode-summary"), v.Make); err != nil {
				return err
			}
		}
	} else {
		if err := d.Fill(ctx, driver.Attribute("formcontrolname", "year"), v.Year); err != nil {
			return err
		}
		if err := d.Fill(ctx, driver.Attribute("formcontrolname", "make"), v.Make); err != nil {
			return err
		}
		if err := d.Fill(ctx, driver.Attribute("formcontrolname", "model"), v.Model); err != nil {
			return err
		}
	}

	return d.ClickWithRetry(ctx, driver.Role("button", "Save Vehicle"), 3)
}

// SetRadius adjusts the operating-radius stepper by delta steps
func (p *Vehicle) SetRadius(ctx context.Context, delta int) error {
	return p.drv.AdjustStepper(ctx, driver.Attribute("data-test", "radius-stepper"), delta)
}

// Next advances the wizard past the vehicle step
func (p *Vehicle) Next(ctx context.Context) error {
	if err := p.drv.ClickWithRetry(ctx, nextButton(), 3); err != nil {
		return err
	}
	return p.drv.Settle(ctx)
}

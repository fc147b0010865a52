// Package pages holds the page objects for the quoting application. Each
// page is a thin composition of driver verbs: selectors and flow knowledge
// live here, retry and wait policy lives in the driver.
package pages

import (
	"github.com/quoteforge/quoteforge/internal/driver"
)

// Pages bundles every page object over one driver
type Pages struct {
	Login    *Login
	Home     *Home
	Account  *Account
	Location *Location
	Coverage *Coverage
	Vehicle  *Vehicle
	Premium  *Premium
}

// New builds the page object set for one application instance
func New(drv *driver.Driver, baseURL string) *Pages {
	return &Pages{
		Login:    &Login{drv: drv, baseURL: baseURL},
		Home:     &Home{drv: drv, baseURL: baseURL},
		Account:  &Account{drv: drv},
		Location: &Location{drv: drv},
		Coverage: &Coverage{drv: drv},
		Vehicle:  &Vehicle{drv: drv},
		Premium:  &Premium{drv: drv},
	}
}

// nextButton is the wizard's forward control, shared across quote steps
func nextButton() driver.Target {
	return driver.Role("button", "Next")
}

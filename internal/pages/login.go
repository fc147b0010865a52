package pages

import (
	"context"

	"github.com/quoteforge/quoteforge/internal/driver"
)

// Login drives the sign-in page
type Login struct {
	drv     *driver.Driver
	baseURL string
}

// SignIn navigates to the login page and authenticates. Completion is
// signalled by the post-login URL, not by the form submitting.
func (p *Login) SignIn(ctx context.Context, username, password string) error {
	d := p.drv
	if err := d.Goto(ctx, p.baseURL+"/login"); err != nil {
		return err
	}
	if err := d.Fill(ctx, driver.Attribute("formcontrolname", "username"), username); err != nil {
		return err
	}
	if err := d.Fill(ctx, driver.Attribute("formcontrolname", "password"), password); err != nil {
		return err
	}
	if err := d.ClickWithRetry(ctx, driver.Role("button", "Sign In"), 3); err != nil {
		return err
	}
	return d.WaitURL(ctx, driver.URLContains("/home"), d.Timeouts().NetworkQuiet)
}

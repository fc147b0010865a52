// Package scenarios defines the quote-workflow regression suite. Scenarios
// compose page objects and fixture data; they contain no selectors and no
// retry logic of their own.
package scenarios

import (
	"context"

	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/pages"
	"github.com/quoteforge/quoteforge/internal/runner"
)

// Suite builds the scenario set for one target application. Every scenario
// is self-contained: it signs in and navigates from the home page, so any
// subset selected by name or tag can run alone.
func Suite(p *pages.Pages, target config.TargetConfig, fixture *config.QuoteFixture) []runner.Scenario {
	signIn := func(ctx context.Context, ex *runner.Execution) error {
		ex.Step("sign in")
		return p.Login.SignIn(ctx, target.Username, target.Password)
	}

	return []runner.Scenario{
		{
			ID:   "login",
			Name: "login with valid credentials",
			Tags: []string{"smoke"},
			Run:  signIn,
		},
		{
			ID:   "account-search",
			Name: "search by account name",
			Tags: []string{"smoke", "search"},
			Run: func(ctx context.Context, ex *runner.Execution) error {
				if err := signIn(ctx, ex); err != nil {
					return err
				}
				ex.Step("search for account")
				return p.Home.SearchAccount(ctx, fixture.Account.Name)
			},
		},
		{
			ID:   "quote-flow",
			Name: "full quote flow",
			Tags: []string{"quote"},
			Run: func(ctx context.Context, ex *runner.Execution) error {
				if err := signIn(ctx, ex); err != nil {
					return err
				}

				ex.Step("open account")
				if err := p.Home.SearchAccount(ctx, fixture.Account.Name); err != nil {
					return err
				}
				if err := p.Home.OpenAccount(ctx, fixture.Account.Name); err != nil {
					return err
				}

				ex.Step("start quote")
				if err := p.Account.StartQuote(ctx); err != nil {
					return err
				}
				if err := p.Account.FillQuoteBasics(ctx, fixture.Account); err != nil {
					return err
				}

				ex.Step("add location")
				if err := p.Location.AddLocation(ctx, fixture.Location); err != nil {
					return err
				}
				if err := p.Location.Next(ctx); err != nil {
					return err
				}

				ex.Step("select coverage")
				ex.Checkpoint(ctx)
				if err := p.Coverage.Apply(ctx, fixture.Coverage); err != nil {
					return err
				}

				ex.Step("add vehicles")
				for _, v := range fixture.Vehicles {
					if err := p.Vehicle.AddVehicle(ctx, v); err != nil {
						return err
					}
				}
				if err := p.Vehicle.Next(ctx); err != nil {
					return err
				}

				ex.Step("rate")
				return p.Premium.Rate(ctx)
			},
		},
		{
			ID:   "coverage-rerun",
			Name: "coverage selections are idempotent on rerun",
			Tags: []string{"quote", "regression"},
			Run: func(ctx context.Context, ex *runner.Execution) error {
				if err := signIn(ctx, ex); err != nil {
					return err
				}
				ex.Step("apply coverage twice")
				if err := p.Coverage.Apply(ctx, fixture.Coverage); err != nil {
					return err
				}
				return p.Coverage.Apply(ctx, fixture.Coverage)
			},
		},
	}
}

package driver

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/domain"
)

// ClickWithRetry resolves, waits visible and clicks, retrying with a fixed
// backoff for elements whose clickability is delayed by animation or an
// overlay. The final failure surfaces the last underlying error as the
// cause of a Timeout.
func (d *Driver) ClickWithRetry(ctx context.Context, t Target, attempts int) error {
	if attempts <= 0 {
		attempts = 3
	}
	d.interaction("click", t)

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			d.retry("click", t)
			if err := sleep(ctx, d.timeouts.RetryWait); err != nil {
				break
			}
		}
		d.emit(Event{Kind: EventClickAttempt, Target: t.String()})

		el, err := d.WaitVisible(ctx, t, d.timeouts.Element)
		if err != nil {
			lastErr = err
			continue
		}
		if err := el.Click(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return &domain.DriveError{
		Code:    domain.ErrCodeTimeout,
		Message: "click " + t.String() + " failed after retries",
		Details: map[string]any{"target": t.String(), "attempts": attempts},
		Err:     lastErr,
	}
}

// Click is a single-attempt click
func (d *Driver) Click(ctx context.Context, t Target) error {
	return d.ClickWithRetry(ctx, t, 1)
}

// FillTyped clears the field then dispatches one keystroke at a time with a
// fixed inter-key delay. Autocomplete and typeahead widgets only trigger
// suggestion lookups on discrete key events, never on a bulk value
// assignment.
func (d *Driver) FillTyped(ctx context.Context, t Target, text string) error {
	d.interaction("fill_typed", t)

	el, err := d.WaitVisible(ctx, t, d.timeouts.Element)
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return domain.SessionError("focus "+t.String(), err)
	}
	if err := el.Fill(""); err != nil {
		return domain.SessionError("clear "+t.String(), err)
	}
	for _, r := range text {
		if err := el.Press(keyName(r)); err != nil {
			return domain.SessionError("type into "+t.String(), err)
		}
		if err := sleep(ctx, d.timeouts.TypeDelay); err != nil {
			return domain.TimeoutError("typing into "+t.String(), d.timeouts.TypeDelay)
		}
	}
	return nil
}

// Fill assigns the value in bulk, for plain inputs with no typeahead
func (d *Driver) Fill(ctx context.Context, t Target, value string) error {
	d.interaction("fill", t)

	el, err := d.WaitVisible(ctx, t, d.timeouts.Element)
	if err != nil {
		return err
	}
	if err := el.Fill(value); err != nil {
		return domain.SessionError("fill "+t.String(), err)
	}
	return nil
}

// Dropdown describes one custom dropdown widget: a trigger that opens it,
// the option list container, and a way to target an option inside the open
// list by its text.
type Dropdown struct {
	Name    string
	Trigger Target
	List    Target
	Option  func(text string) Target
}

// SelectDropdown drives the open/search/confirm protocol of a custom
// dropdown widget. The widget sometimes swallows the first open click, so
// the list-visible poll re-clicks the trigger on each attempt. Exhausting
// maxAttempts full cycles fails with OptionNotFound.
//
// If the trigger already displays the desired option the interaction is
// skipped entirely: re-selecting an already-selected option is where these
// widgets flake the most.
func (d *Driver) SelectDropdown(ctx context.Context, dd Dropdown, option string, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	d.interaction("select_dropdown", dd.Trigger)

	if el, ok := d.resolveOnce(dd.Trigger); ok {
		if current, err := el.InnerText(); err == nil {
			if strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(option)) {
				d.logger.Debug("dropdown already holds desired option",
					zap.String("dropdown", dd.Name),
					zap.String("option", option))
				return nil
			}
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			d.retry("select_dropdown", dd.Trigger)
			if err := sleep(ctx, d.timeouts.RetryWait); err != nil {
				break
			}
		}

		if err := d.ClickWithRetry(ctx, dd.Trigger, 2); err != nil {
			lastErr = err
			continue
		}
		if _, err := d.WaitVisible(ctx, dd.List, d.timeouts.DropdownOpen); err != nil {
			lastErr = err
			continue
		}

		optTarget := dd.Option(option)
		optEl, err := d.WaitVisible(ctx, optTarget, d.timeouts.DropdownOpen)
		if err != nil {
			lastErr = err
			continue
		}
		if err := optEl.Click(); err != nil {
			lastErr = err
			continue
		}

		// The list must be gone before the caller proceeds; clicking an
		// option and racing the close animation re-opens some widgets.
		if err := d.WaitHidden(ctx, dd.List, d.timeouts.DropdownOpen); err != nil {
			d.logger.Warn("dropdown list did not close after selection",
				zap.String("dropdown", dd.Name),
				zap.Error(err))
		}
		return nil
	}

	err := domain.OptionNotFoundError(dd.Name, option, maxAttempts)
	err.Err = lastErr
	return err
}

// SelectDropdownByKeys opens the dropdown and walks a fixed number of
// down-arrow steps followed by Enter. Pointer-based option clicking is
// unreliable on some widgets; the caller trades generality for reliability
// and must know the option's ordinal position. Prefer SelectDropdown
// whenever the option text is known.
func (d *Driver) SelectDropdownByKeys(ctx context.Context, trigger Target, downSteps int) error {
	d.interaction("select_dropdown_keys", trigger)

	el, err := d.WaitVisible(ctx, trigger, d.timeouts.Element)
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return domain.SessionError("open dropdown "+trigger.String(), err)
	}
	if err := sleep(ctx, d.timeouts.KeyDelay); err != nil {
		return domain.TimeoutError("dropdown keys "+trigger.String(), d.timeouts.KeyDelay)
	}
	for i := 0; i < downSteps; i++ {
		if err := el.Press("ArrowDown"); err != nil {
			return domain.SessionError("arrow down in "+trigger.String(), err)
		}
		if err := sleep(ctx, d.timeouts.KeyDelay); err != nil {
			return domain.TimeoutError("dropdown keys "+trigger.String(), d.timeouts.KeyDelay)
		}
	}
	if err := el.Press("Enter"); err != nil {
		return domain.SessionError("confirm dropdown "+trigger.String(), err)
	}
	return nil
}

// Switch describes a binary toggle widget and how to read its state
type Switch struct {
	Target    Target
	StateAttr string // attribute holding the on/off state
	OnValue   string // attribute value meaning "on"
}

func (s Switch) stateAttr() string {
	if s.StateAttr == "" {
		return "aria-checked"
	}
	return s.StateAttr
}

func (s Switch) onValue() string {
	if s.OnValue == "" {
		return "true"
	}
	return s.OnValue
}

// ToggleSwitch reads the current state, clicks only if it differs from
// desired, and re-verifies after the click. Binary widgets sometimes miss
// the first activation, so verification failures retry the click a bounded
// number of times before failing with AssertionMismatch.
func (d *Driver) ToggleSwitch(ctx context.Context, sw Switch, desired bool, retries int) error {
	if retries <= 0 {
		retries = 3
	}
	d.interaction("toggle_switch", sw.Target)

	current, err := d.switchState(ctx, sw)
	if err != nil {
		return err
	}
	if current == desired {
		return nil
	}

	for i := 0; i < retries; i++ {
		if i > 0 {
			d.retry("toggle_switch", sw.Target)
		}
		// Re-resolve each attempt: toggling can replace the node.
		el, err := d.WaitVisible(ctx, sw.Target, d.timeouts.Element)
		if err != nil {
			return err
		}
		if err := el.Click(); err != nil {
			return domain.SessionError("toggle "+sw.Target.String(), err)
		}
		if err := sleep(ctx, d.timeouts.Poll); err != nil {
			break
		}
		current, err = d.switchState(ctx, sw)
		if err != nil {
			return err
		}
		if current == desired {
			return nil
		}
	}

	return domain.AssertionError("switch state "+sw.Target.String(),
		boolWord(desired), boolWord(current))
}

func (d *Driver) switchState(ctx context.Context, sw Switch) (bool, error) {
	el, err := d.WaitVisible(ctx, sw.Target, d.timeouts.Element)
	if err != nil {
		return false, err
	}
	val, err := el.GetAttribute(sw.stateAttr())
	if err != nil {
		return false, domain.SessionError("read switch state "+sw.Target.String(), err)
	}
	return strings.Contains(val, sw.onValue()), nil
}

// AdjustStepper focuses a numeric stepper and sends one directional key per
// unit of delta. The widget's bound value is only synchronized through its
// own key handlers, so direct value assignment would desync it.
func (d *Driver) AdjustStepper(ctx context.Context, t Target, delta int) error {
	d.interaction("adjust_stepper", t)

	el, err := d.WaitVisible(ctx, t, d.timeouts.Element)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return domain.SessionError("focus stepper "+t.String(), err)
	}

	key := "ArrowUp"
	steps := delta
	if delta < 0 {
		key = "ArrowDown"
		steps = -delta
	}
	for i := 0; i < steps; i++ {
		if err := el.Press(key); err != nil {
			return domain.SessionError("step "+t.String(), err)
		}
		if err := sleep(ctx, d.timeouts.KeyDelay); err != nil {
			return domain.TimeoutError("stepper "+t.String(), d.timeouts.KeyDelay)
		}
	}
	return nil
}

// Modal describes a confirmation popup and its confirm (or cancel) control
type Modal struct {
	Popup   Target
	Confirm Target
}

// ConfirmModal waits for the popup, clicks the control, then waits for the
// popup to disappear. All three steps are required: proceeding before the
// popup closes races the next navigation.
func (d *Driver) ConfirmModal(ctx context.Context, m Modal) error {
	d.interaction("confirm_modal", m.Popup)

	if _, err := d.WaitVisible(ctx, m.Popup, d.timeouts.Element); err != nil {
		return err
	}
	if err := d.ClickWithRetry(ctx, m.Confirm, 2); err != nil {
		return err
	}
	return d.WaitHidden(ctx, m.Popup, d.timeouts.Element)
}

// AssertTextContains polls target's text until it contains want, failing
// with AssertionMismatch carrying the last observed text.
func (d *Driver) AssertTextContains(ctx context.Context, t Target, want string) error {
	d.interaction("assert_text", t)

	deadline := time.Now().Add(d.timeouts.Assert)
	last := ""
	for {
		if el, ok := d.resolveOnce(t); ok {
			text, err := el.InnerText()
			if err == nil {
				last = text
				if strings.Contains(text, want) {
					return nil
				}
			}
		}
		if time.Now().After(deadline) {
			return domain.AssertionError("text of "+t.String(), want, truncate(last, 200))
		}
		if err := sleep(ctx, d.timeouts.Poll); err != nil {
			return domain.AssertionError("text of "+t.String(), want, truncate(last, 200))
		}
	}
}

func (d *Driver) interaction(verb string, t Target) {
	if d.metrics != nil {
		d.metrics.InteractionsTotal.WithLabelValues(verb).Inc()
	}
	d.emit(Event{Kind: EventInteraction, Target: t.String(), Detail: verb})
}

func (d *Driver) retry(verb string, t Target) {
	if d.metrics != nil {
		d.metrics.RetriesTotal.WithLabelValues(verb).Inc()
	}
	d.emit(Event{Kind: EventRetry, Target: t.String(), Detail: verb})
}

func keyName(r rune) string {
	switch r {
	case '\n':
		return "Enter"
	case '\t':
		return "Tab"
	default:
		return string(r)
	}
}

func boolWord(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// truncate shortens s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

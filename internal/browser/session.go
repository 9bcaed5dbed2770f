// internal/browser/session.go
package browser

import (
	"context"
	"strings"
	"time"
)

// Element is a handle to a DOM node owned by the session that returned it.
// Handles are only valid until the next navigation of that session.
type Element interface {
	// Attribute returns the named attribute and whether it was present
	Attribute(name string) (string, bool)
}

// Condition is evaluated repeatedly by WaitUntil until it reports true.
// Returning ErrElementNotFound or a transient error keeps the wait going.
type Condition func(ctx context.Context, s Session) (bool, error)

// Session drives one browser tab. Implementations are not safe for
// concurrent use; every worker owns its own session.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	FindAll(ctx context.Context, selector string) ([]Element, error)
	Find(ctx context.Context, selector string) (Element, error)
	WaitUntil(ctx context.Context, cond Condition, timeout time.Duration) error
	Click(ctx context.Context, el Element) error
	ScrollIntoView(ctx context.Context, el Element) error
	ExecuteScript(ctx context.Context, script string, el Element, res any) error
	CurrentURL(ctx context.Context) (string, error)
	PageSource(ctx context.Context) (string, error)
	Quit() error
}

// Scripts understood by every Session implementation. Element scripts are
// function declarations invoked with the element bound to this; page
// scripts are plain expressions. All of them evaluate to a value.
const (
	ScriptScrollToBottom = "window.scrollTo(0, document.body.scrollHeight); true"
	ScriptScrollHeight   = "document.body.scrollHeight"

	ScriptScrollIntoView = `function() { this.scrollIntoView({block: "center", inline: "nearest"}); return true; }`
	ScriptClick          = `function() { this.click(); return true; }`
	ScriptInteractable   = `function() {
		const r = this.getBoundingClientRect();
		const s = window.getComputedStyle(this);
		return r.width > 0 && r.height > 0 && s.visibility !== "hidden" && s.display !== "none" && !this.disabled;
	}`
	ScriptHitTest = `function() {
		const r = this.getBoundingClientRect();
		const hit = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
		return hit !== null && (hit === this || this.contains(hit));
	}`
)

// IsXPath reports whether selector should be evaluated as XPath rather than CSS
func IsXPath(selector string) bool {
	s := strings.TrimSpace(selector)
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(")
}

// Present is satisfied once at least one element matches selector
func Present(selector string) Condition {
	return func(ctx context.Context, s Session) (bool, error) {
		els, err := s.FindAll(ctx, selector)
		if err != nil {
			return false, err
		}
		return len(els) > 0, nil
	}
}

// Interactable is satisfied once el is rendered, visible and enabled
func Interactable(el Element) Condition {
	return func(ctx context.Context, s Session) (bool, error) {
		var ok bool
		if err := s.ExecuteScript(ctx, ScriptInteractable, el, &ok); err != nil {
			return false, err
		}
		return ok, nil
	}
}

// Poll calls check every interval until it reports true, the timeout
// elapses or a non-transient error is returned.
func Poll(ctx context.Context, timeout, interval time.Duration, check func() (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	var last error
	for {
		ok, err := check()
		switch {
		case err == nil && ok:
			return nil
		case err != nil && !IsTransient(err):
			return err
		}
		last = err

		if !time.Now().Before(deadline) {
			return &WaitError{After: timeout, Last: last}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// DefaultPollInterval is the delay between two condition checks
const DefaultPollInterval = 250 * time.Millisecond

// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/law-makers/artcrawl/internal/browser"
)

// Element is a node of the fake document
type Element struct {
	Selector string
	Node     *html.Node
}

// Attribute implements browser.Element
func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.Node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Fake serves static markup keyed by URL. Clicks and scrolls are routed to
// handlers so tests can script page transitions.
type Fake struct {
	// Pages maps a URL to the markup returned after navigating to it
	Pages map[string]string
	// NavigateErrs makes the next n navigations to a URL fail
	NavigateErrs map[string]int
	// StaleFinds makes the next n lookups of a selector fail as stale
	StaleFinds map[string]int
	// Intercept makes direct clicks on a selector fail as intercepted
	Intercept map[string]bool
	// Hidden makes elements of a selector report as not interactable
	Hidden map[string]bool
	// OnClick runs when an element found by the selector is clicked
	OnClick map[string]func(f *Fake)
	// OnScroll runs after every scroll to the bottom
	OnScroll func(f *Fake)
	// Heights are reported by the scroll height script, indexed by the
	// number of scrolls since the last navigation
	Heights []int
	// PollInterval overrides the WaitUntil polling delay
	PollInterval time.Duration

	mu          sync.Mutex
	url         string
	doc         string
	scrolls     int
	dead        bool
	quit        bool
	navigations []string
	clicks      []string
}

var _ browser.Session = (*Fake)(nil)

// New returns a fake serving pages
func New(pages map[string]string) *Fake {
	return &Fake{
		Pages:        pages,
		NavigateErrs: map[string]int{},
		StaleFinds:   map[string]int{},
		Intercept:    map[string]bool{},
		Hidden:       map[string]bool{},
		OnClick:      map[string]func(*Fake){},
		PollInterval: time.Millisecond,
	}
}

// SetHTML replaces the current document
func (f *Fake) SetHTML(doc string) {
	f.mu.Lock()
	f.doc = doc
	f.mu.Unlock()
}

// HTML returns the current document
func (f *Fake) HTML() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc
}

// SetURL changes the current location without loading a page
func (f *Fake) SetURL(u string) {
	f.mu.Lock()
	f.url = u
	f.mu.Unlock()
}

// Scrolls returns the number of scrolls since the last navigation
func (f *Fake) Scrolls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrolls
}

// Kill makes every following operation fail with ErrSessionClosed
func (f *Fake) Kill() {
	f.mu.Lock()
	f.dead = true
	f.mu.Unlock()
}

// Navigations returns every URL navigated to, in order
func (f *Fake) Navigations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navigations...)
}

// Clicks returns "direct:<selector>" and "script:<selector>" entries
func (f *Fake) Clicks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.clicks...)
}

// Closed reports whether Quit was called
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quit
}

func (f *Fake) check() error {
	if f.dead || f.quit {
		return browser.ErrSessionClosed
	}
	return nil
}

// Navigate implements browser.Session
func (f *Fake) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.navigations = append(f.navigations, url)
	if n := f.NavigateErrs[url]; n > 0 {
		f.NavigateErrs[url] = n - 1
		return fmt.Errorf("navigate %s: net::ERR_CONNECTION_RESET", url)
	}
	doc, ok := f.Pages[url]
	if !ok {
		return fmt.Errorf("navigate %s: net::ERR_NAME_NOT_RESOLVED", url)
	}
	f.url = url
	f.doc = doc
	f.scrolls = 0
	return nil
}

// Reload implements browser.Session
func (f *Fake) Reload(ctx context.Context) error {
	f.mu.Lock()
	url := f.url
	f.mu.Unlock()
	return f.Navigate(ctx, url)
}

// FindAll implements browser.Session
func (f *Fake) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	f.mu.Lock()
	if err := f.check(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if n := f.StaleFinds[selector]; n > 0 {
		f.StaleFinds[selector] = n - 1
		f.mu.Unlock()
		return nil, browser.ErrStaleElement
	}
	doc := f.doc
	f.mu.Unlock()

	root, err := htmlquery.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}

	var nodes []*html.Node
	if browser.IsXPath(selector) {
		nodes, err = htmlquery.QueryAll(root, selector)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", selector, err)
		}
	} else {
		nodes = goquery.NewDocumentFromNode(root).Find(selector).Nodes
	}

	els := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &Element{Selector: selector, Node: n})
	}
	return els, nil
}

// Find implements browser.Session
func (f *Fake) Find(ctx context.Context, selector string) (browser.Element, error) {
	els, err := f.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return els[0], nil
}

// WaitUntil implements browser.Session
func (f *Fake) WaitUntil(ctx context.Context, cond browser.Condition, timeout time.Duration) error {
	return browser.Poll(ctx, timeout, f.PollInterval, func() (bool, error) {
		return cond(ctx, f)
	})
}

// Click implements browser.Session
func (f *Fake) Click(ctx context.Context, el browser.Element) error {
	sel, err := f.selectorOf(el)
	if err != nil {
		return err
	}

	f.mu.Lock()
	if err := f.check(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.clicks = append(f.clicks, "direct:"+sel)
	intercepted := f.Intercept[sel]
	hidden := f.Hidden[sel]
	f.mu.Unlock()

	switch {
	case hidden:
		return browser.ErrNotInteractable
	case intercepted:
		return browser.ErrClickIntercepted
	}
	f.fire(sel)
	return nil
}

// ScrollIntoView implements browser.Session
func (f *Fake) ScrollIntoView(ctx context.Context, el browser.Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check()
}

// ExecuteScript implements browser.Session for the scripts declared in
// package browser.
func (f *Fake) ExecuteScript(ctx context.Context, script string, el browser.Element, res any) error {
	f.mu.Lock()
	if err := f.check(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	var out any
	switch script {
	case browser.ScriptScrollToBottom:
		f.mu.Lock()
		f.scrolls++
		onScroll := f.OnScroll
		f.mu.Unlock()
		if onScroll != nil {
			onScroll(f)
		}
		out = true

	case browser.ScriptScrollHeight:
		f.mu.Lock()
		out = 0
		if len(f.Heights) > 0 {
			out = f.Heights[min(f.scrolls, len(f.Heights)-1)]
		}
		f.mu.Unlock()

	case browser.ScriptClick:
		sel, err := f.selectorOf(el)
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.clicks = append(f.clicks, "script:"+sel)
		f.mu.Unlock()
		f.fire(sel)
		out = true

	case browser.ScriptInteractable:
		sel, err := f.selectorOf(el)
		if err != nil {
			return err
		}
		f.mu.Lock()
		out = !f.Hidden[sel]
		f.mu.Unlock()

	case browser.ScriptScrollIntoView, browser.ScriptHitTest:
		out = true

	default:
		return fmt.Errorf("fake session cannot evaluate script %q", script)
	}

	if res == nil {
		return nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, res)
}

// CurrentURL implements browser.Session
func (f *Fake) CurrentURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return "", err
	}
	return f.url, nil
}

// PageSource implements browser.Session
func (f *Fake) PageSource(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return "", err
	}
	return f.doc, nil
}

// Quit implements browser.Session
func (f *Fake) Quit() error {
	f.mu.Lock()
	f.quit = true
	f.mu.Unlock()
	return nil
}

func (f *Fake) selectorOf(el browser.Element) (string, error) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return "", browser.ErrStaleElement
	}
	return e.Selector, nil
}

func (f *Fake) fire(selector string) {
	f.mu.Lock()
	handler := f.OnClick[selector]
	f.mu.Unlock()
	if handler != nil {
		handler(f)
	}
}

// internal/browser/chromedp.go
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Options configures a Chrome session
type Options struct {
	Headless          bool
	UserAgent         string
	Proxy             string
	ChromePath        string
	Headers           map[string]string
	NavigationTimeout time.Duration
	PollInterval      time.Duration
	ExtraArgs         []chromedp.ExecAllocatorOption
}

// ChromeSession is a Session backed by its own Chrome process
type ChromeSession struct {
	opts        Options
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	mu     sync.Mutex
	closed bool
}

type chromeElement struct {
	node *cdp.Node
}

func (e *chromeElement) Attribute(name string) (string, bool) {
	return e.node.Attribute(name)
}

// NewChromeSession launches a browser and opens one tab in it
func NewChromeSession(opts Options) (*ChromeSession, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 60 * time.Second
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("window-size", "1920,1080"),
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if path := FindChrome(opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	allocOpts = append(allocOpts, opts.ExtraArgs...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	warmup := []chromedp.Action{chromedp.Navigate("about:blank")}
	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		warmup = append([]chromedp.Action{network.Enable(), network.SetExtraHTTPHeaders(headers)}, warmup...)
	}

	// The first Run allocates the browser and must use the tab context itself
	if err := chromedp.Run(tabCtx, warmup...); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().
		Bool("headless", opts.Headless).
		Str("proxy", opts.Proxy).
		Msg("Browser session started")

	return &ChromeSession{
		opts:        opts,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      tabCancel,
	}, nil
}

// run executes actions on the tab, aborting them if ctx is cancelled
// without tearing the tab down.
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.ctx.Err() != nil {
		return ErrSessionClosed
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return s.classify(ctx, err)
	}
	return nil
}

func (s *ChromeSession) classify(ctx context.Context, err error) error {
	switch {
	case s.ctx.Err() != nil,
		errors.Is(err, chromedp.ErrInvalidContext),
		errors.Is(err, chromedp.ErrChannelClosed):
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	case ctx.Err() != nil:
		return ctx.Err()
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "No node with given id"),
		strings.Contains(msg, "Could not find node"),
		strings.Contains(msg, "Cannot find context with specified id"):
		return fmt.Errorf("%w: %v", ErrStaleElement, err)
	case strings.Contains(msg, "not visible"),
		strings.Contains(msg, "Node does not have a layout object"):
		return fmt.Errorf("%w: %v", ErrNotInteractable, err)
	}
	return err
}

func nodeOf(el Element) (*cdp.Node, error) {
	ce, ok := el.(*chromeElement)
	if !ok || ce == nil || ce.node == nil {
		return nil, fmt.Errorf("%w: foreign element handle", ErrStaleElement)
	}
	return ce.node, nil
}

// Navigate loads url and waits for the load event
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.opts.NavigationTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Reload reloads the current document
func (s *ChromeSession) Reload(ctx context.Context) error {
	return s.run(ctx, s.opts.NavigationTimeout, chromedp.Reload())
}

// FindAll returns every element matching selector without waiting
func (s *ChromeSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	by := chromedp.ByQueryAll
	if IsXPath(selector) {
		by = chromedp.BySearch
	}

	var nodes []*cdp.Node
	if err := s.run(ctx, 0, chromedp.Nodes(selector, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}

	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{node: n})
	}
	return els, nil
}

// Find returns the first element matching selector
func (s *ChromeSession) Find(ctx context.Context, selector string) (Element, error) {
	els, err := s.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return els[0], nil
}

// WaitUntil polls cond until it holds or timeout elapses
func (s *ChromeSession) WaitUntil(ctx context.Context, cond Condition, timeout time.Duration) error {
	return Poll(ctx, timeout, s.opts.PollInterval, func() (bool, error) {
		return cond(ctx, s)
	})
}

// Click performs a real mouse click at the element's centre. It fails with
// ErrClickIntercepted when another element sits on top of the target.
func (s *ChromeSession) Click(ctx context.Context, el Element) error {
	node, err := nodeOf(el)
	if err != nil {
		return err
	}
	if err := s.ScrollIntoView(ctx, el); err != nil {
		return err
	}

	var hit bool
	if err := s.ExecuteScript(ctx, ScriptHitTest, el, &hit); err != nil {
		return err
	}
	if !hit {
		return ErrClickIntercepted
	}

	return s.run(ctx, 0, chromedp.MouseClickNode(node))
}

// ScrollIntoView centres the element in the viewport
func (s *ChromeSession) ScrollIntoView(ctx context.Context, el Element) error {
	var ok bool
	return s.ExecuteScript(ctx, ScriptScrollIntoView, el, &ok)
}

// ExecuteScript evaluates a page expression, or an element function when el
// is non-nil, decoding the returned value into res.
func (s *ChromeSession) ExecuteScript(ctx context.Context, script string, el Element, res any) error {
	if res == nil {
		var discard any
		res = &discard
	}
	if el == nil {
		return s.run(ctx, 0, chromedp.Evaluate(script, res))
	}

	node, err := nodeOf(el)
	if err != nil {
		return err
	}
	return s.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(node.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		// Released objects die with the page anyway
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		ret, exc, err := runtime.CallFunctionOn(script).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			WithAwaitPromise(true).
			Do(ctx)
		if err != nil {
			return err
		}
		return decodeResult(ret, exc, res)
	}))
}

// decodeResult unmarshals a by-value script result into res. An undefined
// or null result leaves res untouched.
func decodeResult(ret *runtime.RemoteObject, exc *runtime.ExceptionDetails, res any) error {
	if exc != nil {
		return fmt.Errorf("script exception: %w", exc)
	}
	if ret == nil || ret.Type == runtime.TypeUndefined || len(ret.Value) == 0 {
		return nil
	}
	if err := json.Unmarshal([]byte(ret.Value), res); err != nil {
		return fmt.Errorf("decode script result: %w", err)
	}
	return nil
}

// CurrentURL returns the tab's location
func (s *ChromeSession) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, 0, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// PageSource returns the serialized document element
func (s *ChromeSession) PageSource(ctx context.Context) (string, error) {
	var source string
	if err := s.run(ctx, 0, chromedp.OuterHTML("html", &source, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return source, nil
}

// Proxy returns the proxy this session was started with
func (s *ChromeSession) Proxy() string {
	return s.opts.Proxy
}

// Quit closes the tab and terminates the browser process
func (s *ChromeSession) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.cancel()
	s.allocCancel()
	log.Debug().Msg("Browser session closed")
	return nil
}

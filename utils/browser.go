package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"variant-image-extractor/internal/types"
)

// ChromeSession is a types.Session backed by a single chromedp tab.
// Elements are located by script on every call, so no node reference
// outlives the interaction that may replace it.
type ChromeSession struct {
	ctx    context.Context
	cancel []context.CancelFunc
	config *types.Config
	logger types.Logger
}

// NewChromeSession launches the browser and opens the tab used for the whole run
func NewChromeSession(ctx context.Context, config *types.Config, logger types.Logger) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(config.WindowWidth, config.WindowHeight),
		chromedp.UserAgent(config.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(logger.Debugf))

	s := &ChromeSession{
		ctx:    browserCtx,
		cancel: []context.CancelFunc{browserCancel, allocCancel},
		config: config,
		logger: logger,
	}

	headers := map[string]interface{}{
		"Accept-Language": "en-US,en;q=0.9",
	}

	// First Run starts the browser process
	if err := chromedp.Run(browserCtx, network.SetExtraHTTPHeaders(network.Headers(headers))); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debugf("Browser session started (headless=%v, %dx%d)", config.Headless, config.WindowWidth, config.WindowHeight)
	return s, nil
}

// Close tears down the tab and the browser process
func (s *ChromeSession) Close() {
	for _, cancel := range s.cancel {
		cancel()
	}
}

func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx, actions...)
}

// Navigate loads url in the session tab
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Count returns the number of elements matching selector
func (s *ChromeSession) Count(ctx context.Context, selector string) (int, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	return len(nodes), nil
}

// WaitFor waits until selector is present or timeout expires
func (s *ChromeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%s not present after %v: %w", selector, timeout, types.ErrNotFound)
	}
	return nil
}

// elementResult is what every element script returns
type elementResult struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
	Set   bool   `json:"set"`
}

// elementScript wraps body in a function where `el` is the located element
func elementScript(el types.Element, body string) string {
	sel, _ := json.Marshal(el.Selector)
	within, _ := json.Marshal(el.Within)
	return fmt.Sprintf(`(function() {
	var el = document.querySelectorAll(%s)[%d];
	var within = %s;
	if (el && within) { el = el.querySelector(within); }
	if (!el) { return {found: false, value: "", set: false}; }
	%s
})()`, sel, el.Index, within, body)
}

func (s *ChromeSession) evalElement(ctx context.Context, el types.Element, body string) (elementResult, error) {
	var res elementResult
	if err := s.run(ctx, chromedp.Evaluate(elementScript(el, body), &res)); err != nil {
		return res, fmt.Errorf("script on %s[%d] failed: %w", el.Selector, el.Index, err)
	}
	if !res.Found {
		return res, fmt.Errorf("%s[%d] %s: %w", el.Selector, el.Index, el.Within, types.ErrNotFound)
	}
	return res, nil
}

// ScrollIntoView centers the element then shifts the viewport by offset
func (s *ChromeSession) ScrollIntoView(ctx context.Context, el types.Element, offset int) error {
	body := fmt.Sprintf(`el.scrollIntoView({block: 'center', inline: 'nearest'});
	window.scrollBy(0, %d);
	return {found: true, value: "", set: true};`, offset)
	_, err := s.evalElement(ctx, el, body)
	return err
}

// Click performs a script click, which ignores overlays covering the element
func (s *ChromeSession) Click(ctx context.Context, el types.Element) error {
	_, err := s.evalElement(ctx, el, `el.click();
	return {found: true, value: "", set: true};`)
	return err
}

// Text returns the element's rendered text
func (s *ChromeSession) Text(ctx context.Context, el types.Element) (string, error) {
	res, err := s.evalElement(ctx, el, `return {found: true, value: (el.innerText || el.textContent || "").trim(), set: true};`)
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// Attribute reads the property of the same name when it is a non-empty
// string (resolved src/href), falling back to the raw attribute.
func (s *ChromeSession) Attribute(ctx context.Context, el types.Element, name string) (string, bool, error) {
	attr, _ := json.Marshal(name)
	body := fmt.Sprintf(`var name = %s;
	var v = (typeof el[name] === "string" && el[name] !== "") ? el[name] : el.getAttribute(name);
	return {found: true, value: v === null ? "" : String(v), set: v !== null};`, attr)
	res, err := s.evalElement(ctx, el, body)
	if err != nil {
		return "", false, err
	}
	return res.Value, res.Set, nil
}

// Evaluate runs a raw script in the page
func (s *ChromeSession) Evaluate(ctx context.Context, script string, res interface{}) error {
	if err := s.run(ctx, chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	return nil
}

// HTML returns the current document markup
func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return html, nil
}

// Sleep pauses for d
func (s *ChromeSession) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ types.Session = (*ChromeSession)(nil)

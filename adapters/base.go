package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"variant-image-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// BaseAdapter provides the page interactions shared by store adapters.
// It owns no page state: every call goes through the session handle.
type BaseAdapter struct {
	config  *types.Config
	logger  types.Logger
	session types.Session
}

// NewBaseAdapter creates a new base adapter around an open session
func NewBaseAdapter(config *types.Config, logger types.Logger, session types.Session) *BaseAdapter {
	return &BaseAdapter{
		config:  config,
		logger:  logger,
		session: session,
	}
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// NormalizeURL drops the query string and fragment
func NormalizeURL(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.ForceQuery = false
	clean.Fragment = ""
	clean.RawFragment = ""
	return clean.String()
}

// ExtractLinks resolves every anchor against baseURL and keeps those whose
// path contains marker. Results are normalized and unique, in page order.
func (b *BaseAdapter) ExtractLinks(doc *goquery.Document, baseURL *url.URL, marker string) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}

		target, err := baseURL.Parse(href)
		if err != nil {
			return
		}
		if !strings.Contains(target.Path, marker) {
			return
		}

		normalized := NormalizeURL(target)
		if _, ok := seen[normalized]; ok {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})

	return links
}

// ScrollToBottom scrolls until the document stops growing or steps run out
func (b *BaseAdapter) ScrollToBottom(ctx context.Context, steps int) error {
	var last int
	if err := b.session.Evaluate(ctx, "document.body.scrollHeight", &last); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if err := b.session.Evaluate(ctx, "window.scrollTo(0, document.body.scrollHeight)", nil); err != nil {
			return err
		}
		if err := b.session.Sleep(ctx, b.config.ScrollPause); err != nil {
			return err
		}

		var height int
		if err := b.session.Evaluate(ctx, "document.body.scrollHeight", &height); err != nil {
			return err
		}
		b.logger.Debugf("Scroll step %d: height %d -> %d", i+1, last, height)
		if height == last {
			break
		}
		last = height
	}
	return nil
}

// WaitText waits for each selector in turn and returns the first non-empty
// text after clean is applied, along with the selector that produced it.
func (b *BaseAdapter) WaitText(ctx context.Context, selectors []string, clean func(string) string) (string, string, error) {
	for _, selector := range selectors {
		if err := b.session.WaitFor(ctx, selector, b.config.WaitTimeout); err != nil {
			continue
		}
		text, err := b.session.Text(ctx, types.First(selector))
		if err != nil {
			continue
		}
		if text = clean(text); text != "" {
			return text, selector, nil
		}
	}
	return "", "", fmt.Errorf("no text found for %v: %w", selectors, types.ErrNotFound)
}

// Activate scrolls el into view, pauses, then script-clicks it
func (b *BaseAdapter) Activate(ctx context.Context, el types.Element, offset int) error {
	if err := b.session.ScrollIntoView(ctx, el, offset); err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", el.Selector, err)
	}
	if err := b.session.Sleep(ctx, b.config.ActivatePause); err != nil {
		return err
	}
	if err := b.session.Click(ctx, el); err != nil {
		return fmt.Errorf("failed to click %s: %w", el.Selector, err)
	}
	return nil
}

// DismissCookieBanner clicks the first consent control that shows up.
// Returns false when none was present.
func (b *BaseAdapter) DismissCookieBanner(ctx context.Context, selectors []string) bool {
	for _, selector := range selectors {
		if err := b.session.WaitFor(ctx, selector, b.config.CookieWaitTimeout); err != nil {
			continue
		}
		if err := b.session.Click(ctx, types.First(selector)); err != nil {
			continue
		}
		_ = b.session.Sleep(ctx, b.config.ActivatePause)
		b.logger.Info("  Dismissed cookie banner.")
		return true
	}
	return false
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

// Session returns the browser session the adapter drives
func (b *BaseAdapter) Session() types.Session {
	return b.session
}

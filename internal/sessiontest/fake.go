// Package sessiontest provides an in-memory types.Session for tests.
package sessiontest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"variant-image-extractor/internal/types"
)

// Node is a fake DOM element
type Node struct {
	Text     string
	Attrs    map[string]string
	Children map[string]*Node
}

// FakeSession serves elements from Nodes, keyed by selector. Hooks let tests
// mutate the page on click or fail specific interactions.
type FakeSession struct {
	Nodes map[string][]*Node
	Page  string

	// Heights is consumed by scrollHeight queries; the last value repeats
	Heights []int

	// OnClick runs after a click is recorded; a non-nil error fails the click
	OnClick func(f *FakeSession, el types.Element) error
	// OnNavigate runs after navigation is recorded
	OnNavigate func(f *FakeSession, url string) error

	Navigated []string
	Waited    []string
	Clicks    []types.Element
	Scrolls   []types.Element
	Scripts   []string
	Slept     time.Duration
}

// New returns an empty fake page
func New() *FakeSession {
	return &FakeSession{Nodes: make(map[string][]*Node)}
}

// Add appends nodes for selector and returns the session for chaining
func (f *FakeSession) Add(selector string, nodes ...*Node) *FakeSession {
	f.Nodes[selector] = append(f.Nodes[selector], nodes...)
	return f
}

// Remove drops every node for selector
func (f *FakeSession) Remove(selector string) {
	delete(f.Nodes, selector)
}

// ClicksOn counts clicks recorded against selector
func (f *FakeSession) ClicksOn(selector string) int {
	n := 0
	for _, c := range f.Clicks {
		if c.Selector == selector {
			n++
		}
	}
	return n
}

// WaitedFor reports whether a bounded wait was attempted for selector
func (f *FakeSession) WaitedFor(selector string) bool {
	for _, w := range f.Waited {
		if w == selector {
			return true
		}
	}
	return false
}

func (f *FakeSession) lookup(el types.Element) (*Node, error) {
	nodes := f.Nodes[el.Selector]
	if el.Index < 0 || el.Index >= len(nodes) {
		return nil, fmt.Errorf("%s[%d]: %w", el.Selector, el.Index, types.ErrNotFound)
	}
	n := nodes[el.Index]
	if el.Within != "" {
		child := n.Children[el.Within]
		if child == nil {
			return nil, fmt.Errorf("%s[%d] %s: %w", el.Selector, el.Index, el.Within, types.ErrNotFound)
		}
		n = child
	}
	return n, nil
}

func (f *FakeSession) Navigate(ctx context.Context, url string) error {
	f.Navigated = append(f.Navigated, url)
	if f.OnNavigate != nil {
		return f.OnNavigate(f, url)
	}
	return nil
}

func (f *FakeSession) Count(ctx context.Context, selector string) (int, error) {
	return len(f.Nodes[selector]), nil
}

func (f *FakeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	f.Waited = append(f.Waited, selector)
	if len(f.Nodes[selector]) == 0 {
		return fmt.Errorf("%s not present after %v: %w", selector, timeout, types.ErrNotFound)
	}
	return nil
}

func (f *FakeSession) ScrollIntoView(ctx context.Context, el types.Element, offset int) error {
	if _, err := f.lookup(el); err != nil {
		return err
	}
	f.Scrolls = append(f.Scrolls, el)
	return nil
}

func (f *FakeSession) Click(ctx context.Context, el types.Element) error {
	if _, err := f.lookup(el); err != nil {
		return err
	}
	f.Clicks = append(f.Clicks, el)
	if f.OnClick != nil {
		return f.OnClick(f, el)
	}
	return nil
}

func (f *FakeSession) Text(ctx context.Context, el types.Element) (string, error) {
	n, err := f.lookup(el)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(n.Text), nil
}

func (f *FakeSession) Attribute(ctx context.Context, el types.Element, name string) (string, bool, error) {
	n, err := f.lookup(el)
	if err != nil {
		return "", false, err
	}
	v, ok := n.Attrs[name]
	return v, ok, nil
}

// Evaluate understands scrollHeight queries and records everything else
func (f *FakeSession) Evaluate(ctx context.Context, script string, res interface{}) error {
	f.Scripts = append(f.Scripts, script)
	if p, ok := res.(*int); ok && strings.Contains(script, "scrollHeight") {
		if len(f.Heights) == 0 {
			*p = 0
			return nil
		}
		*p = f.Heights[0]
		if len(f.Heights) > 1 {
			f.Heights = f.Heights[1:]
		}
	}
	return nil
}

func (f *FakeSession) HTML(ctx context.Context) (string, error) {
	return f.Page, nil
}

func (f *FakeSession) Sleep(ctx context.Context, d time.Duration) error {
	f.Slept += d
	return ctx.Err()
}

var _ types.Session = (*FakeSession)(nil)

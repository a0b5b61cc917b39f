package types

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a Session when a locator matches nothing.
	ErrNotFound = errors.New("element not found")
	// ErrTitleUnresolved aborts a product when every title strategy yields an empty name.
	ErrTitleUnresolved = errors.New("product title could not be resolved")
	// ErrNoMainImage aborts a product when no layout and no main image were found.
	ErrNoMainImage = errors.New("main image not found")
)

// LayoutKind identifies how a product page presents its color variants
type LayoutKind int

const (
	LayoutNone LayoutKind = iota
	LayoutDrawer
	LayoutTab
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutDrawer:
		return "drawer"
	case LayoutTab:
		return "tab"
	default:
		return "none"
	}
}

// Element addresses a DOM element by position instead of by handle.
// Index selects the n-th match of Selector; Within, when set, narrows to the
// first descendant of that element matching Within.
type Element struct {
	Selector string
	Index    int
	Within   string
}

// First returns a locator for the first match of selector
func First(selector string) Element {
	return Element{Selector: selector}
}

// Nth returns a locator for the i-th match of selector
func Nth(selector string, i int) Element {
	return Element{Selector: selector, Index: i}
}

// Child narrows the locator to a descendant
func (e Element) Child(selector string) Element {
	e.Within = selector
	return e
}

// Session is the browser collaborator. Implementations hold the only
// long-lived page state; callers re-resolve elements on every call.
type Session interface {
	// Navigate loads url in the current page
	Navigate(ctx context.Context, url string) error

	// Count returns how many elements currently match selector
	Count(ctx context.Context, selector string) (int, error)

	// WaitFor polls until selector matches at least one element or timeout expires
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// ScrollIntoView centers the element and then scrolls vertically by offset pixels
	ScrollIntoView(ctx context.Context, el Element, offset int) error

	// Click dispatches a script-level click on the element
	Click(ctx context.Context, el Element) error

	// Text returns the rendered text of the element
	Text(ctx context.Context, el Element) (string, error)

	// Attribute returns the named attribute, with ok=false when it is absent
	Attribute(ctx context.Context, el Element, name string) (value string, ok bool, err error)

	// Evaluate runs a raw script and stores its result in res (may be nil)
	Evaluate(ctx context.Context, script string, res interface{}) error

	// HTML returns the outer HTML of the current document
	HTML(ctx context.Context) (string, error)

	// Sleep pauses for d or until ctx is done
	Sleep(ctx context.Context, d time.Duration) error
}

// VariantResult is one resolved color variant
type VariantResult struct {
	Index      int    `json:"index"`
	ColorLabel string `json:"color_label"`
	ImageURL   string `json:"image_url"`
	Extension  string `json:"extension"`
}

// DownloadTask is handed to the download collaborator
type DownloadTask struct {
	URL               string `json:"url"`
	DestinationFolder string `json:"destination_folder"`
	Filename          string `json:"filename"`
}

// DownloadStatus reports what the download collaborator did with a task
type DownloadStatus int

const (
	DownloadFailed DownloadStatus = iota
	Downloaded
	DownloadSkipped
)

func (s DownloadStatus) String() string {
	switch s {
	case Downloaded:
		return "downloaded"
	case DownloadSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// StepStatus is the outcome of one guarded step in a fallback chain
type StepStatus int

const (
	StepOK StepStatus = iota
	StepSkipped
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepOK:
		return "ok"
	case StepSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Step records the outcome of one strategy or action
type Step struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// Steps accumulates step records for a product or variant
type Steps []Step

// OK records a successful step
func (s *Steps) OK(name string) {
	*s = append(*s, Step{Name: name, Status: StepOK})
}

// Skip records a step that fell through to the next strategy
func (s *Steps) Skip(name, reason string) {
	*s = append(*s, Step{Name: name, Status: StepSkipped, Reason: reason})
}

// Fail records a step that failed
func (s *Steps) Fail(name string, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	*s = append(*s, Step{Name: name, Status: StepFailed, Reason: reason})
}

// Failed reports whether any recorded step failed
func (s Steps) Failed() bool {
	for _, step := range s {
		if step.Status == StepFailed {
			return true
		}
	}
	return false
}

// VariantOutcome is the result of visiting one thumbnail. Result is nil when
// the variant produced nothing to download.
type VariantOutcome struct {
	Index  int            `json:"index"`
	Result *VariantResult `json:"result,omitempty"`
	Steps  Steps          `json:"steps"`
}

// ProductReport summarizes the processing of one product page
type ProductReport struct {
	ProductURL string           `json:"product_url"`
	Title      string           `json:"title,omitempty"`
	Layout     LayoutKind       `json:"layout"`
	Degraded   bool             `json:"degraded"`
	Variants   []VariantOutcome `json:"variants,omitempty"`
	Tasks      []DownloadTask   `json:"tasks,omitempty"`
	Downloaded int              `json:"downloaded"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
	Steps      Steps            `json:"steps"`
	Error      string           `json:"error,omitempty"`
}

// RunSummary totals a full category run
type RunSummary struct {
	RunID      string          `json:"run_id"`
	Products   int             `json:"products"`
	Abandoned  int             `json:"abandoned"`
	Downloaded int             `json:"downloaded"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Reports    []ProductReport `json:"reports,omitempty"`
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

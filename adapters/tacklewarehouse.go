package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"variant-image-extractor/internal/types"
	"variant-image-extractor/utils"
)

const (
	productMarker   = "descpage"
	sourceImageHost = "tacklewarehouse"

	drawerButtonSelector = "button.style_ordering-box-modal_btn"
	drawerThumbSelector  = "button.color-drawer__item-button"
	drawerLabelSelector  = ".style_ordering-box-modal_btn .d-block:first-of-type"

	tabButtonSelector = "#prod_colors"
	tabThumbSelector  = ".color-drawer__item"
	tabNameSelector   = ".color-drawer__item-name"

	degradedImageSelector = "img.main_image"
)

var (
	cookieSelectors = []string{
		"#onetrust-accept-btn-handler",
		"#onetrust-reject-all-handler",
		".onetrust-close-btn-handler",
		"button[aria-label='Close']",
	}

	titleSelectors = []string{
		"h1.desc_top-head-brand",
		".desc_top-head-brand",
		"h1",
		".product-title",
		"[data-testid='product-title']",
	}

	mainImageSelectors = []string{
		"img.main_image",
		"img.is-zoomable",
		".prod_view img",
		"img.prod_view-img-main",
		".carousel__image",
	}
)

// layoutProbe is one entry of the layout detection chain
type layoutProbe struct {
	kind       types.LayoutKind
	control    string
	thumbnails string
}

// Probed in order; the first control found wins.
var layoutProbes = []layoutProbe{
	{kind: types.LayoutDrawer, control: drawerButtonSelector, thumbnails: drawerThumbSelector},
	{kind: types.LayoutTab, control: tabButtonSelector, thumbnails: tabThumbSelector},
}

// TackleWarehouseAdapter handles extraction for tacklewarehouse.com
type TackleWarehouseAdapter struct {
	*BaseAdapter
	now func() time.Time
}

// NewTackleWarehouseAdapter creates a new Tackle Warehouse adapter
func NewTackleWarehouseAdapter(config *types.Config, logger types.Logger, session types.Session) *TackleWarehouseAdapter {
	return &TackleWarehouseAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, session),
		now:         time.Now,
	}
}

// GetStoreName returns the store name
func (t *TackleWarehouseAdapter) GetStoreName() string {
	return "tacklewarehouse.com"
}

// GetProductURLs renders the category page and returns the unique product
// page addresses linked from it.
func (t *TackleWarehouseAdapter) GetProductURLs(ctx context.Context) ([]string, error) {
	categoryURL := t.config.CategoryURL
	t.logger.Infof("Navigating to category page: %s", categoryURL)

	base, err := url.Parse(categoryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid category url %q: %w", categoryURL, err)
	}

	if err := t.session.Navigate(ctx, categoryURL); err != nil {
		return nil, fmt.Errorf("failed to get category page: %w", err)
	}
	if err := t.session.Sleep(ctx, t.config.CategorySettleDelay); err != nil {
		return nil, err
	}

	t.DismissCookieBanner(ctx, cookieSelectors)

	if err := t.ScrollToBottom(ctx, t.config.ScrollSteps); err != nil {
		t.logger.Warnf("Failed to scroll category page: %v", err)
	}

	html, err := t.session.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read category page: %w", err)
	}

	doc, err := t.ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category page: %w", err)
	}

	links := t.ExtractLinks(doc, base, productMarker)
	t.logger.Infof("Found %d unique products.", len(links))
	return links, nil
}

// OpenProduct navigates to a product page and clears the cookie banner
func (t *TackleWarehouseAdapter) OpenProduct(ctx context.Context, productURL string) error {
	if err := t.session.Navigate(ctx, productURL); err != nil {
		return err
	}
	if err := t.session.Sleep(ctx, t.config.ProductSettleDelay); err != nil {
		return err
	}
	t.DismissCookieBanner(ctx, cookieSelectors)
	return nil
}

// ResolveTitle names the product: page title selectors first, then the URL
// slug, then a time-based placeholder.
func (t *TackleWarehouseAdapter) ResolveTitle(ctx context.Context, productURL string) (string, types.Steps, error) {
	var steps types.Steps

	title, selector, err := t.WaitText(ctx, titleSelectors, utils.SanitizeFilename)
	if err == nil {
		steps.OK("title:" + selector)
		return title, steps, nil
	}
	steps.Skip("title:selectors", err.Error())

	if title = utils.SanitizeFilename(titleFromURL(productURL)); title != "" {
		steps.OK("title:url")
		return title, steps, nil
	}
	steps.Skip("title:url", "empty slug")

	if title = utils.SanitizeFilename(fmt.Sprintf("product_%d", t.now().Unix())); title != "" {
		steps.OK("title:placeholder")
		return title, steps, nil
	}

	steps.Fail("title:placeholder", types.ErrTitleUnresolved)
	return "", steps, types.ErrTitleUnresolved
}

// titleFromURL turns .../descpage-DHYD.html into DHYD
func titleFromURL(productURL string) string {
	p := productURL
	if u, err := url.Parse(productURL); err == nil {
		p = u.Path
	}
	slug := path.Base(p)
	if slug == "." || slug == "/" {
		return ""
	}
	slug = strings.TrimSuffix(slug, ".html")
	return strings.Replace(slug, productMarker+"-", "", 1)
}

// DetectLayout probes for the drawer control, then the tab control, each
// under a bounded wait. The matching control is opened as part of detection.
func (t *TackleWarehouseAdapter) DetectLayout(ctx context.Context) (types.LayoutKind, types.Steps) {
	var steps types.Steps

	for _, probe := range layoutProbes {
		name := "layout:" + probe.kind.String()
		if err := t.session.WaitFor(ctx, probe.control, t.config.WaitTimeout); err != nil {
			steps.Skip(name, err.Error())
			continue
		}
		if err := t.Activate(ctx, types.First(probe.control), 0); err != nil {
			steps.Skip(name, err.Error())
			continue
		}
		_ = t.session.Sleep(ctx, t.config.OpenDelay)
		steps.OK(name)
		return probe.kind, steps
	}

	steps.Skip("layout:none", "no color selection control")
	return types.LayoutNone, steps
}

// MainImage reads the default product image for the degraded result
func (t *TackleWarehouseAdapter) MainImage(ctx context.Context) (string, error) {
	src, ok, err := t.session.Attribute(ctx, types.First(degradedImageSelector), "src")
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrNoMainImage, err)
	}
	if !ok || src == "" {
		return "", types.ErrNoMainImage
	}
	return utils.NormalizeImageURL(src), nil
}

func thumbnailSelector(layout types.LayoutKind) string {
	for _, probe := range layoutProbes {
		if probe.kind == layout {
			return probe.thumbnails
		}
	}
	return ""
}

// CountVariants measures the thumbnail list for an opened layout
func (t *TackleWarehouseAdapter) CountVariants(ctx context.Context, layout types.LayoutKind) (int, error) {
	selector := thumbnailSelector(layout)
	if selector == "" {
		return 0, nil
	}
	return t.session.Count(ctx, selector)
}

// ResolveVariant selects thumbnail i and reads its label and image. The
// thumbnail list is queried fresh; present is false when index i no longer
// exists. A drawer is reopened afterwards whatever the outcome.
func (t *TackleWarehouseAdapter) ResolveVariant(ctx context.Context, layout types.LayoutKind, i int) (outcome types.VariantOutcome, present bool) {
	outcome.Index = i
	selector := thumbnailSelector(layout)

	count, err := t.session.Count(ctx, selector)
	if err != nil {
		outcome.Steps.Fail("enumerate", err)
		t.reopen(ctx, layout, &outcome.Steps)
		return outcome, true
	}
	if i >= count {
		outcome.Steps.Skip("enumerate", fmt.Sprintf("index %d out of range (%d thumbnails)", i, count))
		return outcome, false
	}

	defer t.reopen(ctx, layout, &outcome.Steps)

	thumb := types.Nth(selector, i)
	if err := t.selectThumbnail(ctx, thumb); err != nil {
		outcome.Steps.Fail("select", err)
		return outcome, true
	}
	outcome.Steps.OK("select")

	label := t.resolveLabel(ctx, layout, thumb, &outcome.Steps)

	imageURL, err := t.resolveImage(ctx, &outcome.Steps)
	if err != nil {
		outcome.Steps.Fail("image", err)
		return outcome, true
	}

	imageURL = utils.NormalizeImageURL(imageURL)
	outcome.Result = &types.VariantResult{
		Index:      i,
		ColorLabel: label,
		ImageURL:   imageURL,
		Extension:  utils.ImageExtension(imageURL),
	}
	return outcome, true
}

func (t *TackleWarehouseAdapter) selectThumbnail(ctx context.Context, thumb types.Element) error {
	if err := t.session.ScrollIntoView(ctx, thumb, t.config.HeaderOffset); err != nil {
		return err
	}
	if err := t.session.Sleep(ctx, t.config.ThumbnailPause); err != nil {
		return err
	}
	if err := t.session.Click(ctx, thumb); err != nil {
		return err
	}
	// no readiness signal for the image swap
	return t.session.Sleep(ctx, t.config.SwapDelay)
}

// labelSource reads one candidate color label
type labelSource struct {
	name string
	read func(ctx context.Context) (string, error)
}

func (t *TackleWarehouseAdapter) textOf(el types.Element) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return t.session.Text(ctx, el)
	}
}

func (t *TackleWarehouseAdapter) attrOf(el types.Element, name string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		v, _, err := t.session.Attribute(ctx, el, name)
		return v, err
	}
}

func (t *TackleWarehouseAdapter) labelSources(layout types.LayoutKind, thumb types.Element) []labelSource {
	if layout == types.LayoutDrawer {
		return []labelSource{
			{"label:modal", t.textOf(types.First(drawerLabelSelector))},
			{"label:title", t.attrOf(thumb, "title")},
			{"label:aria-label", t.attrOf(thumb, "aria-label")},
			{"label:text", t.textOf(thumb)},
		}
	}
	return []labelSource{
		{"label:name", t.textOf(thumb.Child(tabNameSelector))},
		{"label:text", t.textOf(thumb)},
	}
}

func (t *TackleWarehouseAdapter) resolveLabel(ctx context.Context, layout types.LayoutKind, thumb types.Element, steps *types.Steps) string {
	for _, src := range t.labelSources(layout, thumb) {
		raw, err := src.read(ctx)
		if err != nil {
			steps.Skip(src.name, err.Error())
			continue
		}
		if label := utils.SanitizeFilename(raw); label != "" {
			steps.OK(src.name)
			return label
		}
		steps.Skip(src.name, "empty")
	}
	steps.OK("label:default")
	return fmt.Sprintf("color_%d", thumb.Index+1)
}

// resolveImage prefers a main image served from the store's image host.
// When no candidate is, the last one read is used.
func (t *TackleWarehouseAdapter) resolveImage(ctx context.Context, steps *types.Steps) (string, error) {
	var fallback string
	for _, selector := range mainImageSelectors {
		src, ok, err := t.session.Attribute(ctx, types.First(selector), "src")
		if err != nil || !ok || src == "" {
			continue
		}
		if strings.Contains(src, sourceImageHost) {
			steps.OK("image:" + selector)
			return src, nil
		}
		fallback = src
	}
	if fallback != "" {
		steps.Skip("image:source-host", "no candidate from "+sourceImageHost)
		return fallback, nil
	}
	return "", errors.New("could not find main image")
}

// reopen reopens the drawer, which selecting a variant may have closed
func (t *TackleWarehouseAdapter) reopen(ctx context.Context, layout types.LayoutKind, steps *types.Steps) {
	if layout != types.LayoutDrawer {
		return
	}
	if err := t.session.Click(ctx, types.First(drawerButtonSelector)); err != nil {
		steps.Skip("reopen", err.Error())
		return
	}
	_ = t.session.Sleep(ctx, t.config.ReopenDelay)
	steps.OK("reopen")
}

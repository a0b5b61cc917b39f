package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "https://www.tacklewarehouse.com/catpage-DAM.html", config.CategoryURL)
	assert.Equal(t, "damiki_images", config.OutputDir)
	assert.Equal(t, 3, config.ScrollSteps)
	assert.Equal(t, 3*time.Second, config.WaitTimeout)
	assert.Equal(t, -150, config.HeaderOffset)
	assert.Zero(t, config.MaxRetries)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CATEGORY_URL", "https://example.com/catpage-X.html")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("HEADLESS", "true")
	t.Setenv("WAIT_TIMEOUT", "5s")
	t.Setenv("HTTP_TIMEOUT", "garbage")

	base := DefaultConfig()
	config := ConfigFromEnv(base)

	assert.Equal(t, "https://example.com/catpage-X.html", config.CategoryURL)
	assert.Equal(t, "/tmp/out", config.OutputDir)
	assert.True(t, config.Headless)
	assert.Equal(t, 5*time.Second, config.WaitTimeout)
	assert.Equal(t, base.Timeout, config.Timeout)

	// base is left untouched
	assert.Equal(t, "damiki_images", base.OutputDir)
}

func TestSteps(t *testing.T) {
	var steps Steps
	steps.OK("title")
	steps.Skip("drawer", "not present")
	assert.False(t, steps.Failed())

	steps.Fail("click", ErrNotFound)
	assert.True(t, steps.Failed())
	assert.Len(t, steps, 3)
	assert.Equal(t, "element not found", steps[2].Reason)
	assert.Equal(t, "skipped", steps[1].Status.String())
}

func TestElementLocators(t *testing.T) {
	el := Nth(".color-drawer__item", 2).Child(".color-drawer__item-name")

	assert.Equal(t, ".color-drawer__item", el.Selector)
	assert.Equal(t, 2, el.Index)
	assert.Equal(t, ".color-drawer__item-name", el.Within)
	assert.Equal(t, Element{Selector: "h1"}, First("h1"))
	assert.Equal(t, "drawer", LayoutDrawer.String())
}

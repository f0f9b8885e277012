package biz

import (
	"fmt"
	"sync"

	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

// DisplayMode is the density used to render search results.
type DisplayMode string

const (
	DisplayGrid DisplayMode = "grid"
	DisplayList DisplayMode = "list"
)

// Viewport reports the presentation width and its changes.
type Viewport interface {
	Width() int
	// Subscribe registers fn for width changes and returns its cancel func.
	Subscribe(fn func(width int)) (cancel func())
}

// DisplayModeController derives grid/list from the viewport width until the
// user picks a mode explicitly; from then on the choice sticks for the session.
type DisplayModeController struct {
	breakpoint int

	mu       sync.Mutex
	mode     DisplayMode
	override bool
	cancel   func()
}

// NewDisplayModeController measures vp once and follows its changes.
func NewDisplayModeController(vp Viewport, c *conf.Tracker) *DisplayModeController {
	bp := 768
	if c != nil && c.Breakpoint > 0 {
		bp = int(c.Breakpoint)
	}
	dc := &DisplayModeController{breakpoint: bp}
	dc.mode = dc.modeFor(vp.Width())
	dc.cancel = vp.Subscribe(dc.resize)
	return dc
}

// Mode returns the current display mode.
func (dc *DisplayModeController) Mode() DisplayMode {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.mode
}

// Overridden reports whether the user has picked a mode explicitly.
func (dc *DisplayModeController) Overridden() bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.override
}

// Select applies an explicit user choice and stops auto-switching.
func (dc *DisplayModeController) Select(m DisplayMode) error {
	if m != DisplayGrid && m != DisplayList {
		return fmt.Errorf("invalid display mode %q", m)
	}
	dc.mu.Lock()
	dc.mode = m
	dc.override = true
	dc.mu.Unlock()
	return nil
}

// Close stops following the viewport.
func (dc *DisplayModeController) Close() {
	dc.mu.Lock()
	cancel := dc.cancel
	dc.cancel = nil
	dc.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (dc *DisplayModeController) resize(width int) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.override {
		return
	}
	dc.mode = dc.modeFor(width)
}

// modeFor treats a non-positive width as not yet measured.
func (dc *DisplayModeController) modeFor(width int) DisplayMode {
	if width > 0 && width < dc.breakpoint {
		return DisplayList
	}
	return DisplayGrid
}

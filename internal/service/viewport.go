package service

import "sync"

// ReportedViewport is the viewport width last reported by the presentation
// layer. A width of zero means nothing has been reported yet.
type ReportedViewport struct {
	mu    sync.Mutex
	width int
	next  int
	subs  map[int]func(int)
}

// NewReportedViewport creates an unmeasured viewport.
func NewReportedViewport() *ReportedViewport {
	return &ReportedViewport{subs: make(map[int]func(int))}
}

// Width implements biz.Viewport.
func (v *ReportedViewport) Width() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// Subscribe implements biz.Viewport.
func (v *ReportedViewport) Subscribe(fn func(int)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.next
	v.next++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Report records a new width and notifies subscribers if it changed.
func (v *ReportedViewport) Report(width int) {
	v.mu.Lock()
	if width == v.width {
		v.mu.Unlock()
		return
	}
	v.width = width
	fns := make([]func(int), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(width)
	}
}

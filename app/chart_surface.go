package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"rolstat/domain/core"
	"rolstat/domain/rol"
	"rolstat/internal"
	"rolstat/internal/storage"
	"rolstat/ports"
)

// ChartView is what the chart page displays
type ChartView struct {
	Loaded bool            `json:"loaded"`
	Data   *rol.ChartData  `json:"data,omitempty"`
	Charts []rol.ChartSpec `json:"charts"`
}

// ChartSurface draws the persisted ROL once the operator asks for it and
// redraws it whenever another context changes the stored list. Charts from a
// previous render are destroyed before new ones are created.
type ChartSurface struct {
	mu       sync.Mutex
	bridge   *storage.Bridge
	renderer ports.ChartRenderer
	log      *internal.Logger

	loaded bool
	data   *rol.ChartData
	charts []ports.Chart
}

// NewChartSurface creates a surface that reads through bridge
func NewChartSurface(bridge *storage.Bridge, renderer ports.ChartRenderer, logger *internal.Logger) *ChartSurface {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ChartSurface{bridge: bridge, renderer: renderer, log: logger.Named("charts")}
}

// Origin identifies the surface to the change notifier
func (s *ChartSurface) Origin() core.Origin { return s.bridge.Origin() }

// Load opts the surface in and renders. The surface counts as loaded even when
// there is nothing to render.
func (s *ChartSurface) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	return s.render(ctx)
}

// HandleChange re-renders after the stored list changed, once loaded
func (s *ChartSurface) HandleChange(ctx context.Context, ev ports.ChangeEvent) {
	if ev.Key != storage.KeyValues {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return
	}
	s.log.Debug("stored list changed by %s, re-rendering", ev.Origin)
	if err := s.render(ctx); err != nil {
		s.log.Warn("re-render failed: %v", err)
	}
}

// Subscribe wires HandleChange to notifier
func (s *ChartSurface) Subscribe(notifier ports.ChangeNotifier) ports.Subscription {
	return notifier.Subscribe(s.Origin(), func(ev ports.ChangeEvent) {
		s.HandleChange(context.Background(), ev)
	})
}

func (s *ChartSurface) render(ctx context.Context) error {
	s.destroy()

	data, ok := rol.ProjectChart(s.bridge.Load(ctx))
	if !ok {
		return nil
	}
	s.data = &data

	if s.renderer == nil {
		return nil
	}
	charts, err := s.renderer.Render(ctx, data)
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	s.charts = charts
	s.log.Debug("rendered %d chart(s) for %d label(s)", len(charts), len(data.Labels))
	return nil
}

func (s *ChartSurface) destroy() {
	for _, c := range s.charts {
		c.Destroy()
	}
	s.charts = nil
	s.data = nil
}

// View returns the current projection and the charts drawn from it
func (s *ChartSurface) View() ChartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := ChartView{Loaded: s.loaded, Charts: []rol.ChartSpec{}}
	if s.data != nil {
		d := *s.data
		v.Data = &d
	}
	for _, c := range s.charts {
		v.Charts = append(v.Charts, rol.ChartSpec{Kind: c.Kind(), Title: c.Title()})
	}
	return v
}

// WriteChart writes the rendered chart of kind to w
func (s *ChartSurface) WriteChart(kind rol.ChartKind, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.charts {
		if c.Kind() == kind {
			_, err := c.WriteTo(w)
			return err
		}
	}
	return fmt.Errorf("%w: %s", core.ErrChartNotFound, kind)
}

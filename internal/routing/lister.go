// Package routing drives route display: it requests or subscribes to route
// messages, filters them and writes the rendered records.
package routing

import (
	"context"
	"fmt"
	"io"

	"github.com/wesleywu/nlroute/internal/logger"
	"github.com/wesleywu/nlroute/internal/nlsession"
	"github.com/wesleywu/nlroute/internal/routing/metrics"
	"github.com/wesleywu/nlroute/internal/routing/render"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

// Transport is the netlink session used by a Lister
type Transport interface {
	Dump(ctx context.Context, msgType uint16, family uint8, fn func(nlsession.Message) error) error
	Listen(ctx context.Context, fn func(nlsession.Message) error) error
}

// Lister writes the selected routes of a dump or of a notification stream
type Lister struct {
	transport Transport
	selector  Selector
	renderer  *render.Renderer
	out       io.Writer
	log       *logger.Logger
	metrics   *metrics.Metrics
	stream    render.Stream
}

// NewLister creates a Lister writing to out
func NewLister(t Transport, sel Selector, r *render.Renderer, out io.Writer, log *logger.Logger) *Lister {
	if log == nil {
		log = logger.Discard()
	}
	return &Lister{
		transport: t,
		selector:  sel,
		renderer:  r,
		out:       out,
		log:       log.WithComponent("routing"),
		metrics:   metrics.NewMetrics(),
	}
}

// Show dumps the routing tables and writes every accepted route once.
func (l *Lister) Show(ctx context.Context) error {
	if err := l.transport.Dump(ctx, rtnl.RTM_GETROUTE, l.selector.Family, l.handle); err != nil {
		return err
	}
	if err := l.finish(); err != nil {
		return err
	}

	stats := l.metrics.GetStats()
	l.log.RouteDump(familyName(l.selector.Family), l.selector.Table.String(),
		int(stats.Received), int(stats.Rendered))
	return nil
}

// Monitor writes every accepted route notification until ctx is done.
func (l *Lister) Monitor(ctx context.Context) error {
	l.log.MonitorStart(familyName(l.selector.Family))
	defer l.log.MonitorStop()

	if err := l.transport.Listen(ctx, l.handle); err != nil {
		return err
	}
	if err := l.finish(); err != nil {
		return err
	}

	l.log.Performance("monitor", l.metrics.GetStats().Fields())
	return nil
}

// Metrics returns the counters of this lister
func (l *Lister) Metrics() *metrics.Metrics {
	return l.metrics
}

func (l *Lister) handle(m nlsession.Message) error {
	l.metrics.RecordReceived()

	if m.Type != rtnl.RTM_NEWROUTE {
		l.metrics.RecordIgnored()
		return nil
	}

	h, attrs, err := rtnl.ParseHeader(m.Data)
	if err != nil {
		l.metrics.RecordMalformed()
		l.log.MessageSkipped(m.Type, err.Error())
		return nil
	}
	if !l.selector.AcceptHeader(h) {
		l.metrics.RecordRejected()
		return nil
	}

	rt := rtnl.BuildRoute(h, attrs)
	if !l.selector.AcceptRoute(&rt) {
		l.metrics.RecordRejected()
		return nil
	}

	text, st := l.renderer.Render(&rt, l.stream)
	l.stream = st
	if text == "" {
		return nil
	}
	if _, err := io.WriteString(l.out, text); err != nil {
		return fmt.Errorf("failed to write route: %w", err)
	}
	l.metrics.RecordRendered()
	return nil
}

func (l *Lister) finish() error {
	if tail := l.renderer.Finish(l.stream); tail != "" {
		if _, err := io.WriteString(l.out, tail); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsimonetti/rtnetlink"

	"github.com/wesleywu/nlroute/internal/logger"
	"github.com/wesleywu/nlroute/internal/nlsession"
	"github.com/wesleywu/nlroute/internal/routing/metrics"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

// Interface flags, see include/uapi/linux/if.h.
const (
	iffUp      = 0x1
	iffRunning = 0x40

	carrierMask = iffUp | iffRunning
)

// CarrierOn reports whether a link is administratively up and has carrier.
func CarrierOn(flags uint32) bool {
	return flags&carrierMask == carrierMask
}

// PIDFilePath returns the pid file udhcpc writes for a link. Dots in the
// link name are written as underscores.
func PIDFilePath(dir, link string) string {
	return filepath.Join(dir, "udhcpc."+strings.ReplaceAll(link, ".", "_")+".pid")
}

// ReadPID returns the integer at the start of a pid file, or 0 when the
// file is missing or does not start with a number.
func ReadPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return leadingInt(strings.TrimLeft(string(data), " \t\r\n"))
}

func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Renewer asks the udhcpc instance of a link to renew its lease
type Renewer struct {
	PIDDir string
	signal func(pid int) error
}

// NewRenewer creates a Renewer looking up pid files in dir
func NewRenewer(dir string) *Renewer {
	return &Renewer{PIDDir: dir, signal: signalRenew}
}

// Renew sends SIGUSR1 to the udhcpc of link and returns its pid. A zero
// pid with a nil error means no client runs for the link.
func (r *Renewer) Renew(link string) (int, error) {
	pid := ReadPID(PIDFilePath(r.PIDDir, link))
	if pid <= 0 {
		return 0, nil
	}
	if err := r.signal(pid); err != nil {
		return 0, fmt.Errorf("failed to signal udhcpc %d: %w", pid, err)
	}
	return pid, nil
}

// LeaseRenewer requests a DHCP renew for a link
type LeaseRenewer interface {
	Renew(link string) (int, error)
}

// LinkSource delivers link messages from a dump or a subscription
type LinkSource interface {
	Dump(ctx context.Context, msgType uint16, family uint8, fn func(nlsession.Message) error) error
	Listen(ctx context.Context, fn func(nlsession.Message) error) error
}

// CarrierWatcher requests a DHCP renew whenever a link gains carrier
type CarrierWatcher struct {
	dumps   LinkSource
	events  LinkSource
	renewer LeaseRenewer
	log     *logger.Logger
	metrics *metrics.Metrics
	carrier map[uint32]bool
}

// NewCarrierWatcher creates a watcher reading the initial link state from
// dumps and changes from events. events must be subscribed before Run so
// that no change between the dump and the first notification is lost.
func NewCarrierWatcher(dumps, events LinkSource, renewer LeaseRenewer, log *logger.Logger) *CarrierWatcher {
	if log == nil {
		log = logger.Discard()
	}
	return &CarrierWatcher{
		dumps:   dumps,
		events:  events,
		renewer: renewer,
		log:     log.WithComponent("carrier"),
		metrics: metrics.NewMetrics(),
		carrier: make(map[uint32]bool),
	}
}

// Run renews every link that has carrier now, then every link that gains
// it, until ctx is done or the session fails.
func (w *CarrierWatcher) Run(ctx context.Context) error {
	if err := w.dumps.Dump(ctx, rtnl.RTM_GETLINK, 0, w.handle); err != nil {
		return err
	}
	if err := w.events.Listen(ctx, w.handle); err != nil {
		return err
	}

	w.log.Performance("carrier-watch", w.metrics.GetStats().Fields())
	return nil
}

// Metrics returns the counters of this watcher
func (w *CarrierWatcher) Metrics() *metrics.Metrics {
	return w.metrics
}

func (w *CarrierWatcher) handle(m nlsession.Message) error {
	w.metrics.RecordReceived()

	if m.Type != rtnl.RTM_NEWLINK && m.Type != rtnl.RTM_DELLINK {
		w.metrics.RecordIgnored()
		return nil
	}

	var lm rtnetlink.LinkMessage
	if err := lm.UnmarshalBinary(m.Data); err != nil {
		w.metrics.RecordMalformed()
		w.log.MessageSkipped(m.Type, err.Error())
		return nil
	}

	if m.Type == rtnl.RTM_DELLINK {
		delete(w.carrier, lm.Index)
		return nil
	}

	on := CarrierOn(lm.Flags)
	had := w.carrier[lm.Index]
	w.carrier[lm.Index] = on
	if !on || had {
		return nil
	}

	if lm.Attributes == nil || lm.Attributes.Name == "" {
		return nil
	}
	w.renew(lm.Attributes.Name)
	return nil
}

func (w *CarrierWatcher) renew(link string) {
	log := w.log.WithFields("interface", link)

	pid, err := w.renewer.Renew(link)
	if err != nil {
		log.Warn("DHCP renew failed", "error", err)
		return
	}
	if pid == 0 {
		log.Debug("no udhcpc running")
		return
	}

	w.metrics.RecordRenewal()
	w.log.CarrierRenew(link, pid)
}

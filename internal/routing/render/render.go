// Package render formats decoded route records as ip-route style text or
// as a JSON array.
//
// A record is produced by a fixed, ordered list of field emitters. Each
// emitter receives whether anything was already written for the record and
// returns the updated flag, which decides separator placement. Records are
// joined by a Stream value that the caller threads from one Render call to
// the next.
package render

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/wesleywu/nlroute/internal/routing/types"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

// Mode selects the output format
type Mode int

// Output modes
const (
	Plain Mode = iota
	JSON
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// LabelResolver maps numeric route codes to configured names
type LabelResolver interface {
	Protocol(code uint8) (string, bool)
	Scope(code uint8) (string, bool)
	Table(id uint32) (string, bool)
}

// DeviceNamer maps interface indexes to interface names
type DeviceNamer interface {
	DeviceName(index int32) (string, bool)
}

// Renderer formats route records. Labels and Devices may be nil, in which
// case codes and indexes are shown as numbers.
type Renderer struct {
	Mode    Mode
	Labels  LabelResolver
	Devices DeviceNamer
}

// Stream is the separator state of one output stream. The zero value is a
// stream with nothing written yet.
type Stream struct {
	started bool
	Records int
}

// Render formats one record and returns it with the advanced stream state.
// A record for which no field was emitted yields an empty string and leaves
// the stream unchanged.
func (r *Renderer) Render(rt *types.Route, st Stream) (string, Stream) {
	w := &writer{mode: r.Mode}

	prior := false
	for _, emit := range routeEmitters {
		prior = emit(r, w, rt, prior)
	}
	if !prior {
		return "", st
	}

	var out strings.Builder
	if r.Mode == JSON {
		if st.started {
			out.WriteByte(',')
		} else {
			out.WriteByte('[')
		}
		out.WriteByte('{')
		out.WriteString(w.String())
		out.WriteByte('}')
	} else {
		out.WriteString(w.String())
		out.WriteByte('\n')
	}

	st.started = true
	st.Records++
	return out.String(), st
}

// Finish returns whatever closes the stream: the end of the JSON array,
// or an empty array when no record was written.
func (r *Renderer) Finish(st Stream) string {
	if r.Mode != JSON {
		return ""
	}
	if !st.started {
		return "[]\n"
	}
	return "]\n"
}

type emitter func(r *Renderer, w *writer, rt *types.Route, prior bool) bool

var routeEmitters = []emitter{
	emitType,
	emitDestination,
	emitGateway,
	emitDevice,
	emitTable,
	emitProtocol,
	emitScope,
	emitPrefSrc,
	emitMetric,
	emitFlags,
	emitPref,
	emitNextHops,
}

func emitType(_ *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.Type <= types.TypeUnicast {
		return prior
	}
	name, ok := routeTypeName(rt.Type)
	return w.named(prior, "type", "", name, ok, int64(rt.Type))
}

func emitDestination(_ *Renderer, w *writer, rt *types.Route, prior bool) bool {
	dst := "default"
	if !rt.IsDefault() {
		dst = rt.Destination.String()
		if !rt.IsHostPrefix() {
			dst += "/" + strconv.Itoa(int(rt.DstLen))
		}
	}
	return w.text(prior, "dst", "", dst)
}

func emitGateway(_ *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.Gateway == nil {
		return prior
	}
	return w.text(prior, "gateway", "via", rt.Gateway.String())
}

func emitDevice(r *Renderer, w *writer, rt *types.Route, prior bool) bool {
	return r.device(w, rt.OutputIndex, prior)
}

func emitTable(r *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.Table == types.TableMain || rt.Table == types.TableUnspec {
		return prior
	}
	var name string
	var ok bool
	if r.Labels != nil {
		name, ok = r.Labels.Table(rt.Table)
	}
	return w.named(prior, "table", "table", name, ok, int64(rt.Table))
}

func emitProtocol(r *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.Protocol == types.ProtocolBoot {
		return prior
	}
	var name string
	var ok bool
	if r.Labels != nil {
		name, ok = r.Labels.Protocol(rt.Protocol)
	}
	return w.named(prior, "protocol", "proto", name, ok, int64(rt.Protocol))
}

func emitScope(r *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.Scope == types.ScopeUniverse {
		return prior
	}
	var name string
	var ok bool
	if r.Labels != nil {
		name, ok = r.Labels.Scope(rt.Scope)
	}
	return w.named(prior, "scope", "scope", name, ok, int64(rt.Scope))
}

func emitPrefSrc(_ *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.PreferredSource == nil {
		return prior
	}
	return w.text(prior, "prefsrc", "src", rt.PreferredSource.String())
}

func emitMetric(_ *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.Metric < 0 {
		return prior
	}
	return w.number(prior, "metric", "metric", rt.Metric)
}

func emitFlags(_ *Renderer, w *writer, rt *types.Route, prior bool) bool {
	return w.flags(prior, rt.Flags)
}

func emitPref(_ *Renderer, w *writer, rt *types.Route, prior bool) bool {
	if rt.Preference < 0 {
		return prior
	}
	name, ok := prefName(rt.Preference)
	return w.named(prior, "pref", "pref", name, ok, rt.Preference)
}

func emitNextHops(r *Renderer, w *writer, rt *types.Route, prior bool) bool {
	hops := slices.Collect(rtnl.NextHops(rt))
	if len(hops) == 0 {
		return prior
	}

	if w.mode == JSON {
		w.sep(prior)
		w.key("nexthops")
		w.WriteByte('[')
		for i := range hops {
			if i > 0 {
				w.WriteByte(',')
			}
			w.WriteByte('{')
			r.nextHop(w, &hops[i], false)
			w.WriteByte('}')
		}
		w.WriteByte(']')
		return true
	}

	for i := range hops {
		w.WriteString("\n\tnexthop")
		r.nextHop(w, &hops[i], true)
	}
	return true
}

// nextHop emits the fields of one next-hop: gateway, device, weight, flags.
func (r *Renderer) nextHop(w *writer, nh *types.NextHop, prior bool) bool {
	if nh.Gateway != nil {
		prior = w.text(prior, "gateway", "via", nh.Gateway.String())
	}
	prior = r.device(w, nh.OutputIndex, prior)
	prior = w.number(prior, "weight", "weight", int64(nh.Weight()))
	return w.flags(prior, uint32(nh.Flags))
}

func (r *Renderer) device(w *writer, index int32, prior bool) bool {
	if index <= 0 {
		return prior
	}
	var name string
	var ok bool
	if r.Devices != nil {
		name, ok = r.Devices.DeviceName(index)
	}
	return w.named(prior, "dev", "dev", name, ok, int64(index))
}

// writer accumulates the fields of one record
type writer struct {
	strings.Builder
	mode Mode
}

func (w *writer) sep(prior bool) {
	if !prior {
		return
	}
	if w.mode == JSON {
		w.WriteByte(',')
	} else {
		w.WriteByte(' ')
	}
}

func (w *writer) key(key string) {
	w.quote(key)
	w.WriteByte(':')
}

func (w *writer) quote(s string) {
	b, _ := json.Marshal(s)
	w.Write(b)
}

// text emits a string value. In plain mode it is preceded by label, if set.
func (w *writer) text(prior bool, key, label, s string) bool {
	w.sep(prior)
	if w.mode == JSON {
		w.key(key)
		w.quote(s)
		return true
	}
	if label != "" {
		w.WriteString(label)
		w.WriteByte(' ')
	}
	w.WriteString(s)
	return true
}

func (w *writer) number(prior bool, key, label string, n int64) bool {
	w.sep(prior)
	if w.mode == JSON {
		w.key(key)
		w.WriteString(strconv.FormatInt(n, 10))
		return true
	}
	if label != "" {
		w.WriteString(label)
		w.WriteByte(' ')
	}
	w.WriteString(strconv.FormatInt(n, 10))
	return true
}

// named emits name when ok, else the numeric code.
func (w *writer) named(prior bool, key, label, name string, ok bool, n int64) bool {
	if ok {
		return w.text(prior, key, label, name)
	}
	return w.number(prior, key, label, n)
}

// flags emits one token per known bit and the hexadecimal remainder. Nothing
// is emitted for an empty mask.
func (w *writer) flags(prior bool, flags uint32) bool {
	if flags == 0 {
		return prior
	}
	tokens, rest := flagTokens(flags)

	if w.mode == JSON {
		if rest != 0 {
			tokens = append(tokens, "0x"+hexFlags(rest))
		}
		w.sep(prior)
		w.key("flags")
		w.WriteByte('[')
		for i, tok := range tokens {
			if i > 0 {
				w.WriteByte(',')
			}
			w.quote(tok)
		}
		w.WriteByte(']')
		return true
	}

	for _, tok := range tokens {
		w.sep(prior)
		w.WriteString(tok)
		prior = true
	}
	if rest != 0 {
		w.sep(prior)
		w.WriteString("flags ")
		w.WriteString(hexFlags(rest))
	}
	return true
}

package rtnl

import (
	"errors"
	"net"

	"github.com/mdlayher/netlink/nlenc"

	"github.com/wesleywu/nlroute/internal/routing/types"
)

// HeaderLen is sizeof(struct rtmsg); the attribute stream follows it.
const HeaderLen = 12

// ErrShortMessage is returned for a message too short to hold a route header.
var ErrShortMessage = errors.New("rtnl: message shorter than route header")

// Header is the fixed route message header (struct rtmsg).
type Header struct {
	Family   uint8
	DstLen   uint8
	SrcLen   uint8
	TOS      uint8
	Table    uint8
	Protocol uint8
	Scope    uint8
	Type     uint8
	Flags    uint32
}

// ParseHeader decodes the route header at the start of a message payload
// and returns it together with the attribute stream that follows.
func ParseHeader(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLen {
		return Header{}, nil, ErrShortMessage
	}

	h := Header{
		Family:   data[0],
		DstLen:   data[1],
		SrcLen:   data[2],
		TOS:      data[3],
		Table:    data[4],
		Protocol: data[5],
		Scope:    data[6],
		Type:     data[7],
		Flags:    nlenc.Uint32(data[8:12]),
	}
	return h, data[HeaderLen:], nil
}

// MarshalBinary encodes the header, as used in dump requests.
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderLen)
	b[0] = h.Family
	b[1] = h.DstLen
	b[2] = h.SrcLen
	b[3] = h.TOS
	b[4] = h.Table
	b[5] = h.Protocol
	b[6] = h.Scope
	b[7] = h.Type
	nlenc.PutUint32(b[8:12], h.Flags)
	return b, nil
}

type attrDecoder func(r *types.Route, a Attribute)

// routeAttrs maps the attribute types shown by the renderer to the field
// they fill. Types without an entry are skipped.
var routeAttrs = [rtaMax + 1]attrDecoder{
	RTA_DST:       func(r *types.Route, a Attribute) { setAddr(&r.Destination, r.Family, a) },
	RTA_GATEWAY:   func(r *types.Route, a Attribute) { setAddr(&r.Gateway, r.Family, a) },
	RTA_PREFSRC:   func(r *types.Route, a Attribute) { setAddr(&r.PreferredSource, r.Family, a) },
	RTA_OIF:       decodeOIF,
	RTA_PRIORITY:  decodePriority,
	RTA_TABLE:     decodeTable,
	RTA_MARK:      decodeMark,
	RTA_PREF:      decodePref,
	RTA_EXPIRES:   decodeExpires,
	RTA_MULTIPATH: func(r *types.Route, a Attribute) { r.Multipath = a.Data },
}

// BuildRoute folds the attribute stream into a route record initialized
// from the header. A later attribute of the same type replaces an earlier one.
func BuildRoute(h Header, attrs []byte) types.Route {
	r := types.Route{
		Family:     h.Family,
		DstLen:     h.DstLen,
		Protocol:   h.Protocol,
		Scope:      h.Scope,
		Type:       h.Type,
		Flags:      h.Flags,
		Table:      uint32(h.Table),
		Metric:     types.Unset,
		Mark:       types.Unset,
		Preference: types.Unset,
		Expire:     types.Unset,
	}

	for a := range Attributes(attrs) {
		if int(a.Type) >= len(routeAttrs) {
			continue
		}
		if fn := routeAttrs[a.Type]; fn != nil {
			fn(&r, a)
		}
	}
	return r
}

// DecodeRoute decodes a complete RTM_NEWROUTE payload.
func DecodeRoute(data []byte) (types.Route, error) {
	h, attrs, err := ParseHeader(data)
	if err != nil {
		return types.Route{}, err
	}
	return BuildRoute(h, attrs), nil
}

func addr(family uint8, a Attribute) (net.IP, bool) {
	n := types.AddrLen(family)
	if n == 0 || len(a.Data) < n {
		return nil, false
	}
	return net.IP(a.Data[:n:n]), true
}

func setAddr(dst *net.IP, family uint8, a Attribute) {
	if ip, ok := addr(family, a); ok {
		*dst = ip
	}
}

func decodeOIF(r *types.Route, a Attribute) {
	if v, ok := a.Int32(); ok {
		r.OutputIndex = v
	}
}

func decodePriority(r *types.Route, a Attribute) {
	if v, ok := a.Uint32(); ok {
		r.Metric = int64(v)
	}
}

func decodeTable(r *types.Route, a Attribute) {
	if v, ok := a.Uint32(); ok {
		r.Table = v
	}
}

func decodeMark(r *types.Route, a Attribute) {
	if v, ok := a.Uint32(); ok {
		r.Mark = int64(v)
	}
}

func decodePref(r *types.Route, a Attribute) {
	if v, ok := a.Uint8(); ok {
		r.Preference = int64(v)
	}
}

func decodeExpires(r *types.Route, a Attribute) {
	if v, ok := a.Uint64(); ok && v <= 1<<63-1 {
		r.Expire = int64(v)
	}
}

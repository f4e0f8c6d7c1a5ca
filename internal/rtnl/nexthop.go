package rtnl

import (
	"iter"

	"github.com/mdlayher/netlink/nlenc"

	"github.com/wesleywu/nlroute/internal/routing/types"
)

// nextHopHeaderLen is sizeof(struct rtnexthop):
// rtnh_len u16, rtnh_flags u8, rtnh_hops u8, rtnh_ifindex s32.
const nextHopHeaderLen = 8

// NextHops returns the next-hops packed in the route's RTA_MULTIPATH
// payload, in payload order. Routes without one yield nothing.
func NextHops(r *types.Route) iter.Seq[types.NextHop] {
	return DecodeNextHops(r.Family, r.Multipath)
}

// DecodeNextHops walks a multipath payload. Each sub-record carries its own
// attribute stream, of which only RTA_GATEWAY is used. Framing follows the
// attribute walker: a record must fit in the remaining bytes, and the next
// one starts at the aligned end of the previous one.
func DecodeNextHops(family uint8, b []byte) iter.Seq[types.NextHop] {
	return func(yield func(types.NextHop) bool) {
		rest := b
		for len(rest) >= nextHopHeaderLen {
			l := int(nlenc.Uint16(rest[0:2]))
			if l < nextHopHeaderLen || l > len(rest) {
				return
			}

			nh := types.NextHop{
				Family:      family,
				Flags:       rest[2],
				Hops:        rest[3],
				OutputIndex: nlenc.Int32(rest[4:8]),
			}
			for a := range Attributes(rest[nextHopHeaderLen:l]) {
				if a.Type == RTA_GATEWAY {
					setAddr(&nh.Gateway, family, a)
				}
			}
			if !yield(nh) {
				return
			}

			next := align(l)
			if next >= len(rest) {
				return
			}
			rest = rest[next:]
		}
	}
}

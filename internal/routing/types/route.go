package types

import (
	"net"
)

// Unset marks an optional numeric route field that the kernel did not report
const Unset = -1

// Address families as carried in rtm_family. These are the Linux values
// regardless of the host the decoder runs on.
const (
	FamilyUnspec uint8 = 0
	FamilyINET   uint8 = 2
	FamilyINET6  uint8 = 10
)

// Well-known routing table ids
const (
	TableUnspec uint32 = 0
	TableMain   uint32 = 254
	TableLocal  uint32 = 255
)

// Well-known header codes used to suppress defaults on output
const (
	ProtocolBoot  uint8 = 3
	ScopeUniverse uint8 = 0
	TypeUnicast   uint8 = 1
)

// Route represents one decoded kernel route notification
type Route struct {
	Family   uint8  // AF_INET or AF_INET6
	DstLen   uint8  // Destination prefix length
	Protocol uint8  // Routing protocol code
	Scope    uint8  // Route scope code
	Type     uint8  // Route type code (unicast, blackhole, ...)
	Flags    uint32 // RTNH_F_* and RTM_F_* bits
	Table    uint32 // Routing table id, header value unless overridden

	OutputIndex int32 // Output interface index, <= 0 when absent

	Metric     int64 // Unset when absent
	Mark       int64 // Unset when absent
	Preference int64 // Unset when absent
	Expire     int64 // Unset when absent

	Destination     net.IP // nil for the default route
	Gateway         net.IP
	PreferredSource net.IP

	// Multipath holds the raw RTA_MULTIPATH payload, walked lazily.
	Multipath []byte
}

// IsDefault reports whether the route has no destination address
func (r *Route) IsDefault() bool {
	return r.Destination == nil
}

// IsHostPrefix reports whether the destination prefix covers a single address
func (r *Route) IsHostPrefix() bool {
	return int(r.DstLen) == AddrBits(r.Family)
}

// NextHop represents one weighted path of a multipath route
type NextHop struct {
	Family      uint8
	Flags       uint8
	Hops        uint8 // Raw rtnh_hops; the rendered weight is Hops+1
	OutputIndex int32
	Gateway     net.IP
}

// Weight returns the path weight as shown to users
func (nh *NextHop) Weight() int {
	return int(nh.Hops) + 1
}

// AddrLen returns the address length in bytes for an address family, 0 if unsupported
func AddrLen(family uint8) int {
	switch family {
	case FamilyINET:
		return net.IPv4len
	case FamilyINET6:
		return net.IPv6len
	default:
		return 0
	}
}

// AddrBits returns the address length in bits for an address family
func AddrBits(family uint8) int {
	return AddrLen(family) * 8
}

package rtnl

// Route attribute types, see include/uapi/linux/rtnetlink.h.
const (
	RTA_UNSPEC uint16 = iota
	RTA_DST
	RTA_SRC
	RTA_IIF
	RTA_OIF
	RTA_GATEWAY
	RTA_PRIORITY
	RTA_PREFSRC
	RTA_METRICS
	RTA_MULTIPATH
	RTA_PROTOINFO
	RTA_FLOW
	RTA_CACHEINFO
	RTA_SESSION
	RTA_MP_ALGO
	RTA_TABLE
	RTA_MARK
	RTA_MFC_STATS
	RTA_VIA
	RTA_NEWDST
	RTA_PREF
	RTA_ENCAP_TYPE
	RTA_ENCAP
	RTA_EXPIRES

	rtaMax = RTA_EXPIRES
)

// Link message types.
const (
	RTM_NEWLINK uint16 = 16
	RTM_DELLINK uint16 = 17
	RTM_GETLINK uint16 = 18
)

// Message types carrying a route header.
const (
	RTM_NEWROUTE uint16 = 24
	RTM_DELROUTE uint16 = 25
	RTM_GETROUTE uint16 = 26
)

// Multicast groups of the routing netlink family.
const (
	RTMGRP_LINK       uint32 = 0x1
	RTMGRP_IPV4_ROUTE uint32 = 0x40
	RTMGRP_IPV6_ROUTE uint32 = 0x400
)

// Next-hop and route flag bits, in the order they are shown.
const (
	RTNH_F_DEAD       uint32 = 1 << iota // Nexthop is dead (used by multipath)
	RTNH_F_PERVASIVE                     // Do recursive gateway lookup
	RTNH_F_ONLINK                        // Gateway is forced on link
	RTNH_F_OFFLOAD                       // Offloaded route
	RTNH_F_LINKDOWN                      // Carrier-down on nexthop
	RTNH_F_UNRESOLVED                    // The entry is unresolved (ipmr)
	RTNH_F_TRAP                          // Nexthop is trapping packets
)

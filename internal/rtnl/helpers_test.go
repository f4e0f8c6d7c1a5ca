package rtnl

import (
	"net"

	"github.com/mdlayher/netlink/nlenc"
)

func encodeAttr(typ uint16, data []byte) []byte {
	l := attrHeaderLen + len(data)
	b := make([]byte, align(l))
	nlenc.PutUint16(b[0:2], uint16(l))
	nlenc.PutUint16(b[2:4], typ)
	copy(b[attrHeaderLen:], data)
	return b
}

func encodeU32(v uint32) []byte {
	b := make([]byte, 4)
	nlenc.PutUint32(b, v)
	return b
}

func encodeNextHop(flags, hops uint8, ifindex int32, attrs ...[]byte) []byte {
	var body []byte
	for _, a := range attrs {
		body = append(body, a...)
	}
	l := nextHopHeaderLen + len(body)
	b := make([]byte, align(l))
	nlenc.PutUint16(b[0:2], uint16(l))
	b[2] = flags
	b[3] = hops
	nlenc.PutInt32(b[4:8], ifindex)
	copy(b[nextHopHeaderLen:], body)
	return b
}

func concat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

func ip4(s string) []byte {
	return []byte(net.ParseIP(s).To4())
}

func ip6(s string) []byte {
	return []byte(net.ParseIP(s).To16())
}

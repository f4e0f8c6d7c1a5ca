// Package rtnl decodes rtnetlink route messages into route records.
//
// Everything here works on borrowed byte slices: decoding never copies the
// message buffer and never reads outside of it. A structurally invalid
// attribute stream ends iteration early instead of failing.
package rtnl

import (
	"iter"

	"github.com/mdlayher/netlink/nlenc"
)

const (
	// attrHeaderLen is sizeof(struct rtattr): rta_len u16, rta_type u16.
	attrHeaderLen = 4
	attrAlignTo   = 4
)

// Attribute is one type-length-value record of an rtattr stream.
type Attribute struct {
	Type uint16
	Data []byte
}

func align(n int) int {
	return (n + attrAlignTo - 1) &^ (attrAlignTo - 1)
}

// Attributes returns the attributes packed in b, in stream order.
//
// An attribute is accepted when its header fits in the remaining bytes and
// its declared length covers the header without running past the end of b.
// The first attribute failing that check ends the sequence. The following
// attribute starts at the 4-byte aligned offset after the declared length.
func Attributes(b []byte) iter.Seq[Attribute] {
	return func(yield func(Attribute) bool) {
		rest := b
		for len(rest) >= attrHeaderLen {
			l := int(nlenc.Uint16(rest[0:2]))
			if l < attrHeaderLen || l > len(rest) {
				return
			}

			a := Attribute{
				Type: nlenc.Uint16(rest[2:4]),
				Data: rest[attrHeaderLen:l:l],
			}
			if !yield(a) {
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

// Uint8 returns the first byte of the attribute payload.
func (a Attribute) Uint8() (uint8, bool) {
	if len(a.Data) < 1 {
		return 0, false
	}
	return a.Data[0], true
}

// Uint32 decodes a native-endian u32 payload.
func (a Attribute) Uint32() (uint32, bool) {
	if len(a.Data) < 4 {
		return 0, false
	}
	return nlenc.Uint32(a.Data[:4]), true
}

// Int32 decodes a native-endian s32 payload.
func (a Attribute) Int32() (int32, bool) {
	if len(a.Data) < 4 {
		return 0, false
	}
	return nlenc.Int32(a.Data[:4]), true
}

// Uint64 decodes a native-endian u64 payload, accepting a u32 one as well.
func (a Attribute) Uint64() (uint64, bool) {
	switch {
	case len(a.Data) >= 8:
		return nlenc.Uint64(a.Data[:8]), true
	case len(a.Data) >= 4:
		return uint64(nlenc.Uint32(a.Data[:4])), true
	default:
		return 0, false
	}
}

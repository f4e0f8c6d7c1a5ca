package render

import (
	"fmt"
)

var routeTypeNames = [...]string{
	"unspec", "unicast", "local", "broadcast", "anycast",
	"multicast", "blackhole", "unreachable", "prohibit", "throw",
	"nat", "xresolve",
}

// routeTypeName returns the name of a route type code
func routeTypeName(code uint8) (string, bool) {
	if int(code) < len(routeTypeNames) {
		return routeTypeNames[code], true
	}
	return "", false
}

// prefName returns the name of an ICMPv6 router preference
func prefName(pref int64) (string, bool) {
	switch pref {
	case 0:
		return "medium", true
	case 1:
		return "high", true
	case 2:
		return "invalid", true
	case 3:
		return "low", true
	default:
		return "", false
	}
}

// Bit order matches RTNH_F_DEAD .. RTNH_F_TRAP.
var flagNames = [...]string{
	"dead", "pervasive", "onlink", "offload", "linkdown", "unresolved", "trap",
}

const knownFlags = 1<<len(flagNames) - 1

// flagTokens splits a flag mask into the names of its known bits, lowest
// bit first, and the bits left over.
func flagTokens(flags uint32) ([]string, uint32) {
	var tokens []string
	for i, name := range flagNames {
		if flags&(1<<i) != 0 {
			tokens = append(tokens, name)
		}
	}
	return tokens, flags &^ knownFlags
}

func hexFlags(rest uint32) string {
	return fmt.Sprintf("%x", rest)
}

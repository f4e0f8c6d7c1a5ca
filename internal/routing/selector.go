package routing

import (
	"fmt"
	"strconv"

	"github.com/wesleywu/nlroute/internal/routing/types"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

// TableKind is how routes are selected by table
type TableKind int

const (
	// TableMainOnly shows every table except local
	TableMainOnly TableKind = iota
	// TableAll shows every table
	TableAll
	// TableID shows one table, matched against the decoded record
	TableID
)

// TableSelection is a parsed --table argument
type TableSelection struct {
	Kind TableKind
	ID   uint32
}

// String returns the selection as it would be written on the command line
func (ts TableSelection) String() string {
	switch ts.Kind {
	case TableMainOnly:
		return "main"
	case TableAll:
		return "all"
	default:
		return strconv.FormatUint(uint64(ts.ID), 10)
	}
}

// TableNamer resolves table names to ids
type TableNamer interface {
	TableID(name string) (uint32, bool)
}

// ParseTable resolves a --table argument: "main", "all", a table number or
// a name from rt_tables.
func ParseTable(arg string, names TableNamer) (TableSelection, error) {
	switch arg {
	case "", "main":
		return TableSelection{Kind: TableMainOnly}, nil
	case "all":
		return TableSelection{Kind: TableAll}, nil
	}

	if id, err := strconv.ParseUint(arg, 0, 32); err == nil {
		return TableSelection{Kind: TableID, ID: uint32(id)}, nil
	}
	if names != nil {
		if id, ok := names.TableID(arg); ok {
			return TableSelection{Kind: TableID, ID: id}, nil
		}
	}
	return TableSelection{}, fmt.Errorf("unknown table %q", arg)
}

// ParseFamily maps a family option to its address family; "" is any.
func ParseFamily(name string) (uint8, error) {
	switch name {
	case "":
		return types.FamilyUnspec, nil
	case "inet", "4":
		return types.FamilyINET, nil
	case "inet6", "6":
		return types.FamilyINET6, nil
	default:
		return 0, fmt.Errorf("unknown family %q", name)
	}
}

// Selector decides which route messages are shown
type Selector struct {
	Family uint8 // FamilyUnspec accepts both IPv4 and IPv6
	Table  TableSelection
}

// AcceptHeader filters on the fixed header, before any attribute is read.
func (s Selector) AcceptHeader(h rtnl.Header) bool {
	if h.Family != types.FamilyINET && h.Family != types.FamilyINET6 {
		return false
	}
	if s.Family != types.FamilyUnspec && h.Family != s.Family {
		return false
	}
	if s.Table.Kind == TableMainOnly && uint32(h.Table) == types.TableLocal {
		return false
	}
	return true
}

// AcceptRoute filters on the decoded record. The header table field is only
// eight bits wide, so an explicit id is compared against RTA_TABLE.
func (s Selector) AcceptRoute(r *types.Route) bool {
	if s.Table.Kind == TableID {
		return r.Table == s.Table.ID
	}
	return true
}

func familyName(family uint8) string {
	switch family {
	case types.FamilyINET:
		return "inet"
	case types.FamilyINET6:
		return "inet6"
	default:
		return "any"
	}
}

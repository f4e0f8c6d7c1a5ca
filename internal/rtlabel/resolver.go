// Package rtlabel maps route protocol, scope and table codes to the
// symbolic names configured in the iproute2 label files.
package rtlabel

import (
	"path/filepath"

	"github.com/wesleywu/nlroute/internal/config"
	"github.com/wesleywu/nlroute/internal/logger"
)

// Label table files under the labels directory
const (
	ProtocolsFile = "rt_protos"
	ScopesFile    = "rt_scopes"
	TablesFile    = "rt_tables"
)

const (
	maxByteIndex  = 255
	maxTableIndex = 1<<32 - 1
)

// Resolver holds the label tables. It is read-only once loaded and safe
// for concurrent use.
type Resolver struct {
	protocols map[uint32]string
	scopes    map[uint32]string
	tables    map[uint32]string
	tableIDs  map[string]uint32
}

// New creates a resolver from in-memory tables. Nil maps are treated as empty.
func New(protocols, scopes, tables map[uint32]string) *Resolver {
	r := &Resolver{
		protocols: protocols,
		scopes:    scopes,
		tables:    tables,
		tableIDs:  make(map[string]uint32, len(tables)),
	}
	for id, name := range tables {
		if prev, ok := r.tableIDs[name]; !ok || id < prev {
			r.tableIDs[name] = id
		}
	}
	return r
}

// Load reads the three label files from dir. A file that cannot be read
// leaves its table empty, so every lookup in it misses.
func Load(dir string, log *logger.Logger) *Resolver {
	load := func(name string, maxIndex uint32) map[uint32]string {
		path := filepath.Join(dir, name)
		labels, err := config.LoadLabelTable(path, maxIndex)
		if err != nil {
			if log != nil {
				log.Debug("label table unavailable", "file", path, "error", err)
			}
			return nil
		}
		return labels
	}

	return New(
		load(ProtocolsFile, maxByteIndex),
		load(ScopesFile, maxByteIndex),
		load(TablesFile, maxTableIndex),
	)
}

// Protocol returns the name of a route protocol code
func (r *Resolver) Protocol(code uint8) (string, bool) {
	name, ok := r.protocols[uint32(code)]
	return name, ok
}

// Scope returns the name of a route scope code
func (r *Resolver) Scope(code uint8) (string, bool) {
	name, ok := r.scopes[uint32(code)]
	return name, ok
}

// Table returns the name of a routing table id
func (r *Resolver) Table(id uint32) (string, bool) {
	name, ok := r.tables[id]
	return name, ok
}

// TableID returns the table id configured for name
func (r *Resolver) TableID(name string) (uint32, bool) {
	id, ok := r.tableIDs[name]
	return id, ok
}

// Sizes returns the number of protocol, scope and table labels
func (r *Resolver) Sizes() (protocols, scopes, tables int) {
	return len(r.protocols), len(r.scopes), len(r.tables)
}

package network

import (
	"fmt"
	"sync"

	"github.com/vishvananda/netlink"
)

// LinkNamer maps interface indexes to names, caching every answer. Indexes
// that do not resolve are cached as misses.
type LinkNamer struct {
	mutex  sync.RWMutex
	names  map[int32]string
	lookup func(index int) (string, error)
}

// NewLinkNamer creates a LinkNamer backed by RTM_GETLINK requests
func NewLinkNamer() *LinkNamer {
	return &LinkNamer{
		names:  make(map[int32]string),
		lookup: linkName,
	}
}

func linkName(index int) (string, error) {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return "", fmt.Errorf("failed to get link %d: %w", index, err)
	}
	return link.Attrs().Name, nil
}

// Preload fills the cache with every link of the system in one dump
func (n *LinkNamer) Preload() error {
	links, err := netlink.LinkList()
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()
	for _, link := range links {
		attrs := link.Attrs()
		n.names[int32(attrs.Index)] = attrs.Name
	}
	return nil
}

// DeviceName returns the name of the interface with the given index
func (n *LinkNamer) DeviceName(index int32) (string, bool) {
	if index <= 0 {
		return "", false
	}

	n.mutex.RLock()
	name, cached := n.names[index]
	n.mutex.RUnlock()
	if cached {
		return name, name != ""
	}

	name, err := n.lookup(int(index))
	if err != nil {
		name = ""
	}

	n.mutex.Lock()
	n.names[index] = name
	n.mutex.Unlock()

	return name, name != ""
}

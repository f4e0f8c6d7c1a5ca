package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseLabelLines parses "index name" lines of an iproute2 label table.
//
// The index accepts a 0x or 0 prefix. Lines that do not start with an index
// followed by a name are skipped, which covers comments and blank lines.
// Indexes above maxIndex are skipped. A later line wins over an earlier one
// for the same index.
func ParseLabelLines(lines []string, maxIndex uint32) map[uint32]string {
	labels := make(map[uint32]string, len(lines))

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		index, err := strconv.ParseUint(fields[0], 0, 32)
		if err != nil || index > uint64(maxIndex) {
			continue
		}

		labels[uint32(index)] = fields[1]
	}

	return labels
}

// LoadLabelTable loads a label table file
func LoadLabelTable(file string, maxIndex uint32) (map[uint32]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", file, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", file, err)
	}

	return ParseLabelLines(lines, maxIndex), nil
}

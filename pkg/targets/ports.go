package targets

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sliceutil "github.com/projectdiscovery/utils/slice"
)

// ErrInvalidPortSpec is returned for malformed port tokens
var ErrInvalidPortSpec = errors.New("invalid port specification")

// ParsePorts parses port tokens into a sorted, deduplicated list.
// Supported forms:
//   - single: "22"
//   - list: "22,80,443"
//   - range: "1-1024"
//   - mixed: "22,80,8000-8100"
func ParsePorts(specs []string) ([]int, error) {
	var ports []int

	for _, spec := range specs {
		for _, token := range strings.Split(spec, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}

			if start, end, ok := strings.Cut(token, "-"); ok {
				low, err := parsePort(start)
				if err != nil {
					return nil, err
				}
				high, err := parsePort(end)
				if err != nil {
					return nil, err
				}
				if low > high {
					return nil, fmt.Errorf("%w: range start greater than end: %s", ErrInvalidPortSpec, token)
				}
				for port := low; port <= high; port++ {
					ports = append(ports, port)
				}
				continue
			}

			port, err := parsePort(token)
			if err != nil {
				return nil, err
			}
			ports = append(ports, port)
		}
	}

	ports = sliceutil.Dedupe(ports)
	sort.Ints(ports)
	return ports, nil
}

func parsePort(value string) (int, error) {
	value = strings.TrimSpace(value)
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPortSpec, value)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: %d not in 1..65535", ErrInvalidPortSpec, port)
	}
	return port, nil
}

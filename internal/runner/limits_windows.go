//go:build windows

package runner

import "math"

// descriptorHeadroom is not limited per process on windows
func descriptorHeadroom() (int, error) {
	return math.MaxInt32, nil
}

//go:build !windows

package runner

import (
	"math"
	"os"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// descriptorHeadroom returns how many more file descriptors the process can open
func descriptorHeadroom() (int, error) {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, err
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	open, err := proc.NumFDs()
	if err != nil {
		return 0, err
	}

	current := uint64(limit.Cur)
	if current > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	headroom := int(current) - int(open)
	if headroom < 0 {
		headroom = 0
	}
	return headroom, nil
}

//go:build linux

package coop

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

// osClock reads CLOCK_MONOTONIC directly and parks the idle hook in ppoll
// on an eventfd, so a Wake from another OS thread interrupts the sleep
// without a helper goroutine.
type osClock struct {
	efd int
}

// NewOSClock returns a clock backed by the host's monotonic clock and an
// eventfd wakeup. Ticks are nanoseconds.
func NewOSClock() (Clock, error) {
	efd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &osClock{efd: efd}, nil
}

func (c *osClock) Ticks() Ticks {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic("coop: clock_gettime: " + err.Error())
	}
	return Ticks(ts.Nano())
}

func (c *osClock) TicksPerSecond() int64 {
	return int64(time.Second)
}

func (c *osClock) Idle(max time.Duration) {
	var timeout *unix.Timespec
	if max >= 0 {
		ts := unix.NsecToTimespec(max.Nanoseconds())
		timeout = &ts
	}
	fds := []unix.PollFd{{Fd: int32(c.efd), Events: unix.POLLIN}}
	for {
		n, err := unix.Ppoll(fds, timeout, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			panic("coop: ppoll: " + err.Error())
		}
		if n > 0 {
			// Drain the eventfd counter so the next Idle blocks again.
			var buf [8]byte
			unix.Read(c.efd, buf[:])
		}
		return
	}
}

func (c *osClock) Wake() {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	unix.Write(c.efd, buf[:])
}

// Close releases the eventfd. The clock must not be idling.
func (c *osClock) Close() error {
	return unix.Close(c.efd)
}

package main

import (
	"golang.org/x/sys/unix"
)

const (
	getTermios = unix.TCGETS
	setTermios = unix.TCSETS
)

// enterRaw puts the tty into raw single-character mode so that the
// input traps see keys as they are typed. The returned function
// restores the saved state.
func enterRaw(fd uintptr) (restore func(), err error) {
	termios, err := unix.IoctlGetTermios(int(fd), getTermios)
	if err != nil {
		return
	}

	saved := *termios

	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err = unix.IoctlSetTermios(int(fd), setTermios, termios); err != nil {
		return
	}

	restore = func() {
		_ = unix.IoctlSetTermios(int(fd), setTermios, &saved)
	}

	return
}

//go:build linux && !baremetal && !tinygo

package internal

import (
	"errors"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/sys/unix"
)

// Tap is a Linux TAP interface. Frames read and written carry no packet
// information header and no FCS.
type Tap struct {
	fd   int // points to /dev/net/tun device.
	name string
}

// NewTap creates the TAP interface name. If ip is valid the interface is brought
// up with that address. Reads do not block, see [Tap.ReadFrame].
func NewTap(name string, ip netip.Prefix) (*Tap, error) {
	if len(name) >= unix.IFNAMSIZ {
		return nil, errors.New("name too large")
	}
	fd, err := unix.Open("/dev/net/tun", unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open tun device: %w", err)
	}
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	ifr.SetUint16(unix.IFF_TAP | unix.IFF_NO_PI)
	err = unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("creating tap interface: %w", err)
	}
	err = unix.SetNonblock(fd, true)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	tap := &Tap{fd: fd, name: name}
	if ip.IsValid() {
		err = tap.configure(ip)
		if err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	return tap, nil
}

// configure assigns an IPv4 address and netmask to the interface and sets it up.
func (tap *Tap) configure(ip netip.Prefix) error {
	if !ip.Addr().Is4() {
		return errors.New("tap: only IPv4 addresses supported")
	}
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("tap socket open: %w", err)
	}
	defer unix.Close(sock)
	ifr, err := unix.NewIfreq(tap.name)
	if err != nil {
		return err
	}
	err = ifr.SetInet4Addr(ip.Addr().AsSlice())
	if err == nil {
		err = unix.IoctlIfreq(sock, unix.SIOCSIFADDR, ifr)
	}
	if err != nil {
		return fmt.Errorf("failed to assign IP address: %w", err)
	}
	mask := net.CIDRMask(ip.Bits(), 32)
	err = ifr.SetInet4Addr(mask)
	if err == nil {
		err = unix.IoctlIfreq(sock, unix.SIOCSIFNETMASK, ifr)
	}
	if err != nil {
		return fmt.Errorf("failed to assign netmask: %w", err)
	}
	err = unix.IoctlIfreq(sock, unix.SIOCGIFFLAGS, ifr)
	if err != nil {
		return err
	}
	ifr.SetUint16(ifr.Uint16() | unix.IFF_UP | unix.IFF_RUNNING)
	err = unix.IoctlIfreq(sock, unix.SIOCSIFFLAGS, ifr)
	if err != nil {
		return fmt.Errorf("failed to set link up: %w", err)
	}
	return nil
}

// Name returns the interface name.
func (tap *Tap) Name() string { return tap.name }

// ReadFrame reads a frame into b. It returns 0 and a nil error if no frame is available.
func (tap *Tap) ReadFrame(b []byte) (int, error) {
	n, err := unix.Read(tap.fd, b)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, nil
	}
	return n, err
}

// Write writes a single frame.
func (tap *Tap) Write(b []byte) (int, error) {
	return unix.Write(tap.fd, b)
}

func (tap *Tap) Close() error {
	return unix.Close(tap.fd)
}

// MTU returns the interface MTU.
func (tap *Tap) MTU() (int, error) {
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, fmt.Errorf("tap socket open: %w", err)
	}
	defer unix.Close(sock)
	ifr, err := unix.NewIfreq(tap.name)
	if err != nil {
		return 0, err
	}
	err = unix.IoctlIfreq(sock, unix.SIOCGIFMTU, ifr)
	if err != nil {
		return 0, err
	}
	return int(ifr.Uint32()), nil
}

//go:build !linux || tinygo || baremetal

package internal

import (
	"errors"
	"net/netip"
)

type Tap struct{}

func NewTap(name string, ip netip.Prefix) (*Tap, error) {
	return nil, errors.ErrUnsupported
}

func (tap *Tap) Name() string { return "" }

func (tap *Tap) ReadFrame(b []byte) (int, error) {
	return -1, errors.ErrUnsupported
}

func (tap *Tap) Write(b []byte) (int, error) {
	return -1, errors.ErrUnsupported
}

func (tap *Tap) Close() error {
	return errors.ErrUnsupported
}

func (tap *Tap) MTU() (int, error) {
	return -1, errors.ErrUnsupported
}

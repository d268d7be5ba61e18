package etherc

// ErrorKind enumerates the errors returned by the driver packages.
// All values are comparable so callers may use == or errors.Is.
type ErrorKind uint8

// Driver errors.
const (
	_                      ErrorKind = iota // non-initialized err
	ErrLinkDown                             // link not ready
	ErrModeConflict                         // operation conflicts with magic packet detection mode
	ErrRingFull                             // no free TX descriptor
	ErrNoData                               // no received data
	ErrInitTimeout                          // PHY reset timeout
	ErrUnsupportedRegister                  // unsupported PHY register address
	ErrANIncomplete                         // auto-negotiation not complete
	ErrInvalidLength                        // invalid frame length
	ErrInvalidConfig                        // invalid configuration
)

func (err ErrorKind) Error() string {
	return err.String()
}

func (err ErrorKind) String() string {
	switch err {
	case ErrLinkDown:
		return "link not ready"
	case ErrModeConflict:
		return "operation conflicts with magic packet detection mode"
	case ErrRingFull:
		return "no free TX descriptor"
	case ErrNoData:
		return "no received data"
	case ErrInitTimeout:
		return "PHY reset timeout"
	case ErrUnsupportedRegister:
		return "unsupported PHY register address"
	case ErrANIncomplete:
		return "auto-negotiation not complete"
	case ErrInvalidLength:
		return "invalid frame length"
	case ErrInvalidConfig:
		return "invalid configuration"
	}
	return "ErrorKind(" + itoa(uint8(err)) + ")"
}

func itoa(v uint8) string {
	var buf [3]byte
	i := len(buf)
	for {
		i--
		buf[i] = '0' + v%10
		v /= 10
		if v == 0 {
			break
		}
	}
	return string(buf[i:])
}

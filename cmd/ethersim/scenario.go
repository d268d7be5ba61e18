package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/phy"
)

// Scenario describes a simulation run.
type Scenario struct {
	// MAC is the driver's hardware address. If empty it is derived from UID.
	MAC string `yaml:"mac"`
	// UID is a hex encoded device unique ID used to derive the MAC address.
	UID string `yaml:"uid"`
	// IP is the address the echo responder answers on.
	IP string `yaml:"ip"`

	RxDescriptors int  `yaml:"rx_descriptors"`
	TxDescriptors int  `yaml:"tx_descriptors"`
	PauseFrames   bool `yaml:"pause_frames"`
	LinkSignal    bool `yaml:"link_signal"`

	PHY     PHYScenario `yaml:"phy"`
	Partner []string    `yaml:"partner"`
	Peer    PeerConfig  `yaml:"peer"`

	Steps  int     `yaml:"steps"`
	Events []Event `yaml:"events"`
}

// PHYScenario configures the simulated PHY and its driver.
type PHYScenario struct {
	Addr       uint8  `yaml:"addr"`
	ResetDelay int    `yaml:"reset_delay"`
	ANDelay    int    `yaml:"an_delay"`
	ResetPolls int    `yaml:"reset_polls"`
	Extended   bool   `yaml:"extended"`
	MMDDevice  uint8  `yaml:"mmd_device"`
	Name       string `yaml:"name"`
}

// PeerConfig is the simulated station on the other end of the cable.
type PeerConfig struct {
	MAC  string `yaml:"mac"`
	IP   string `yaml:"ip"`
	Port uint16 `yaml:"port"`
}

// Event is an action applied at a given step.
type Event struct {
	At     int    `yaml:"at"`
	Action string `yaml:"action"`
	// Count repeats frame injecting actions.
	Count int `yaml:"count"`
	// Size is the UDP payload size of injected datagrams.
	Size int `yaml:"size"`
}

// Event actions.
const (
	actionLinkUp   = "link-up"
	actionLinkDown = "link-down"
	actionGlitch   = "glitch"
	actionUDP      = "udp"
	actionBadFCS   = "bad-fcs"
	actionWOL      = "wol"
	actionMagic    = "magic"
)

var errScenario = errors.New("invalid scenario")

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	return ParseScenario(b)
}

// ParseScenario decodes a YAML scenario, applies defaults and validates it.
func ParseScenario(b []byte) (sc Scenario, err error) {
	err = yaml.Unmarshal(b, &sc)
	if err != nil {
		return sc, err
	}
	if sc.Steps == 0 {
		sc.Steps = 100
	}
	if sc.IP == "" {
		sc.IP = "192.168.10.2"
	}
	if sc.Peer.MAC == "" {
		sc.Peer.MAC = "02:00:00:00:00:01"
	}
	if sc.Peer.IP == "" {
		sc.Peer.IP = "192.168.10.1"
	}
	if sc.Peer.Port == 0 {
		sc.Peer.Port = 7
	}
	if len(sc.Partner) == 0 {
		sc.Partner = []string{"100F", "100H", "10F", "10H"}
	}
	if _, err = sc.HardwareAddr(); err != nil {
		return sc, err
	}
	if _, err = sc.PartnerAdvertisement(); err != nil {
		return sc, err
	}
	if _, err = parseMAC(sc.Peer.MAC); err != nil {
		return sc, err
	}
	if _, err = netip.ParseAddr(sc.IP); err != nil {
		return sc, err
	}
	if _, err = netip.ParseAddr(sc.Peer.IP); err != nil {
		return sc, err
	}
	for _, ev := range sc.Events {
		switch ev.Action {
		case actionLinkUp, actionLinkDown, actionGlitch, actionUDP, actionBadFCS, actionWOL, actionMagic:
		default:
			return sc, fmt.Errorf("%w: unknown action %q", errScenario, ev.Action)
		}
		if ev.At < 0 || ev.At >= sc.Steps {
			return sc, fmt.Errorf("%w: event %q at step %d outside run", errScenario, ev.Action, ev.At)
		}
	}
	return sc, nil
}

// HardwareAddr returns the driver MAC address.
func (sc *Scenario) HardwareAddr() ([6]byte, error) {
	if sc.MAC != "" {
		return parseMAC(sc.MAC)
	}
	if sc.UID == "" {
		return [6]byte{}, fmt.Errorf("%w: one of mac or uid required", errScenario)
	}
	uid, err := parseHex(sc.UID)
	if err != nil {
		return [6]byte{}, err
	}
	return etherc.HardwareAddrFromUID(uid), nil
}

// PartnerAdvertisement returns the link partner's auto-negotiation advertisement.
func (sc *Scenario) PartnerAdvertisement() (phy.ANAR, error) {
	adv := phy.NewANAR()
	for _, mode := range sc.Partner {
		switch strings.ToLower(mode) {
		case "10h":
			adv |= phy.ANAR10Half
		case "10f":
			adv |= phy.ANAR10Full
		case "100h":
			adv |= phy.ANAR100Half
		case "100f":
			adv |= phy.ANAR100Full
		case "pause":
			adv |= phy.ANARPause
		case "asym":
			adv |= phy.ANARPauseAsym
		default:
			return 0, fmt.Errorf("%w: unknown partner ability %q", errScenario, mode)
		}
	}
	return adv, nil
}

// Variant returns the PHY variant for the driver.
func (p *PHYScenario) Variant() phy.Variant {
	if !p.Extended {
		return phy.VariantBasicMII
	}
	name := p.Name
	if name == "" {
		name = "extended"
	}
	return phy.VariantExtended(name, p.MMDDevice)
}

func parseMAC(s string) (mac [6]byte, err error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return mac, err
	} else if len(hw) != 6 {
		return mac, fmt.Errorf("%w: %q is not an EUI-48 address", errScenario, s)
	}
	return [6]byte(hw), nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ReplaceAll(s, ":", ""), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: uid: %v", errScenario, err)
	}
	return b, nil
}

package main

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/edmac"
	"github.com/soypat/etherc/ethernet"
	"github.com/soypat/etherc/internal"
	"github.com/soypat/etherc/phy"
	"github.com/soypat/etherc/sim"
)

// Report summarizes a simulation run.
type Report struct {
	Steps    int
	Stats    edmac.Stats
	Injected int // Frames put on the wire by the peer.
	Echoes   int // UDP echo replies seen by the peer.
	Sent     int // Frames transmitted by the driver.
	Bridged  int // Frames exchanged with the TAP interface.
	LinkUp   bool
}

// runner drives a simulated board, the driver on top of it and an echo application.
type runner struct {
	sc      Scenario
	log     *slog.Logger
	verbose bool
	tap     *internal.Tap
	tapbuf  []byte

	board *sim.Board
	mdio  phy.MDIOBitBang
	dev   phy.Device
	drv   edmac.Driver
	app   *echoApp

	mac, peerMAC [6]byte
	ip, peerIP   netip.Addr
	partner      phy.ANAR
	seed         uint32
	report       Report
}

func newRunner(sc Scenario, logger *slog.Logger) (*runner, error) {
	r := &runner{sc: sc, log: logger, seed: 0x2545f491}
	var err error
	r.mac, err = sc.HardwareAddr()
	if err != nil {
		return nil, err
	}
	r.peerMAC, err = parseMAC(sc.Peer.MAC)
	if err != nil {
		return nil, err
	}
	r.ip, err = netip.ParseAddr(sc.IP)
	if err != nil {
		return nil, err
	}
	r.peerIP, err = netip.ParseAddr(sc.Peer.IP)
	if err != nil {
		return nil, err
	}
	r.partner, err = sc.PartnerAdvertisement()
	if err != nil {
		return nil, err
	}
	r.board = sim.NewBoard(sim.BoardConfig{
		PHY: sim.PHYConfig{
			Addr:       sc.PHY.Addr,
			ResetDelay: sc.PHY.ResetDelay,
			ANDelay:    sc.PHY.ANDelay,
		},
		Logger: logger,
	})
	r.mdio.Configure(r.board.PIR(), func() {})
	err = r.dev.Configure(&r.mdio, phy.DeviceConfig{
		PHYAddr:    sc.PHY.Addr,
		Variant:    sc.PHY.Variant(),
		ResetPolls: sc.PHY.ResetPolls,
		ReadID:     true,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	err = r.drv.Configure(edmac.Config{
		Registers:     r.board.Registers(),
		PHY:           &r.dev,
		RxDescriptors: sc.RxDescriptors,
		TxDescriptors: sc.TxDescriptors,
		PauseFrames:   sc.PauseFrames,
		UseLinkSignal: sc.LinkSignal,
		OnLinkUp:      func() { logger.Info("link up", internal.SlogReg("ecmr", r.board.MAC.ECMR.Stored())) },
		OnLinkOff:     func() { logger.Info("link off") },
		OnWakeOnLAN:   func() { logger.Info("wake on LAN") },
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	r.board.SetInterruptHandler(r.drv.HandleInterrupt)
	r.app = newEchoApp(r.mac, r.ip)
	return r, nil
}

// run opens the driver and steps the simulation. With a TAP interface attached
// it runs until ctx is done, otherwise for the scenario's step count.
func (r *runner) run(ctx context.Context) (Report, error) {
	err := r.drv.Open(r.mac)
	if err != nil {
		return r.report, err
	}
	defer r.drv.Close()
	backoff := internal.NewBackoff(time.Millisecond, 100*time.Millisecond)
	for step := 0; r.tap != nil || step < r.sc.Steps; step++ {
		if ctx.Err() != nil {
			break
		}
		for _, ev := range r.sc.Events {
			if ev.At == step {
				r.apply(ev)
			}
		}
		work := r.bridgeIn()
		r.board.Step()
		r.drv.Process()
		work += r.service()
		work += r.collect()
		r.report.Steps++
		if r.tap == nil {
			continue
		}
		if work > 0 {
			backoff.Hit()
		} else {
			backoff.Miss()
		}
	}
	r.report.Stats = r.drv.Stats()
	r.report.LinkUp = r.drv.TransferEnabled()
	return r.report, nil
}

func (r *runner) apply(ev Event) {
	r.log.Debug("event", slog.String("action", ev.Action), slog.Int("at", ev.At))
	count := max(ev.Count, 1)
	switch ev.Action {
	case actionLinkUp:
		r.board.SetLink(true, r.partner)
	case actionLinkDown:
		r.board.SetLink(false, 0)
	case actionGlitch:
		r.board.PulseLinkSignal(true)
	case actionUDP:
		for range count {
			frame, err := r.peerUDP(ev.Size)
			if err != nil {
				r.log.Error("building datagram", slog.String("err", err.Error()))
				return
			}
			r.board.MAC.Receive(frame)
			r.report.Injected++
		}
	case actionBadFCS:
		for range count {
			frame, _ := r.peerUDP(ev.Size)
			frame = ethernet.AppendFCS(frame)
			frame[len(frame)-1] ^= 0xff
			r.board.MAC.ReceiveWithFCS(frame)
			r.report.Injected++
		}
	case actionWOL:
		err := r.drv.WakeOnLAN()
		if err != nil {
			r.log.Warn("wake on LAN not armed", slog.String("err", err.Error()))
		}
	case actionMagic:
		r.board.MAC.Receive(ethernet.AppendWakeOnLANFrame(nil, r.peerMAC, r.mac))
		r.report.Injected++
	}
}

// peerUDP builds a datagram from the peer to the echo port carrying size pseudo random bytes.
func (r *runner) peerUDP(size int) ([]byte, error) {
	if size <= 0 {
		size = 32
	}
	payload := make([]byte, size)
	r.seed = internal.FillPrand(payload, r.seed)
	eth := layers.Ethernet{SrcMAC: r.peerMAC[:], DstMAC: r.mac[:], EthernetType: layers.EthernetTypeIPv4}
	ip := layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP(r.peerIP.AsSlice()),
		DstIP:    net.IP(r.ip.AsSlice()),
	}
	udp := layers.UDP{SrcPort: layers.UDPPort(r.sc.Peer.Port), DstPort: echoPort}
	udp.SetNetworkLayerForChecksum(&ip)
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, serializeOpts, &eth, &ip, &udp, gopacket.Payload(payload))
	if err != nil {
		return nil, err
	}
	return ethernet.AppendPadding(buf.Bytes()), nil
}

// service runs the application over the driver's zero-copy API and returns the
// number of frames handled.
func (r *runner) service() (handled int) {
	for {
		frame, err := r.drv.Read()
		if err != nil {
			if err != etherc.ErrNoData && err != etherc.ErrLinkDown && err != etherc.ErrModeConflict {
				r.log.Error("read", slog.String("err", err.Error()))
			}
			return handled
		}
		handled++
		if r.verbose {
			r.logRx(frame)
		}
		reply, ok := r.app.reply(frame)
		r.drv.ReleaseReadBuffer()
		if !ok {
			continue
		}
		buf, err := r.drv.GetWriteBuffer()
		if err != nil {
			r.log.Warn("reply dropped", slog.String("err", err.Error()))
			continue
		}
		err = r.drv.CommitWrite(copy(buf, reply))
		if err != nil {
			r.log.Warn("commit", slog.String("err", err.Error()))
		}
	}
}

// collect inspects frames transmitted onto the wire as the peer would and
// forwards them to the TAP interface if attached.
func (r *runner) collect() int {
	txd := r.board.MAC.Transmitted()
	for _, frame := range txd {
		r.report.Sent++
		pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
		if r.verbose {
			r.log.Info("tx", slog.Int("len", len(frame)), slog.String("layers", layerSummary(pkt)))
		}
		ip, _ := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		udp, _ := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if ip != nil && udp != nil && udp.SrcPort == echoPort && ip.SrcIP.Equal(net.IP(r.ip.AsSlice())) {
			r.report.Echoes++
		}
		if r.tap != nil {
			_, err := r.tap.Write(frame)
			if err != nil {
				r.log.Error("tap write", slog.String("err", err.Error()))
				continue
			}
			r.report.Bridged++
		}
	}
	return len(txd)
}

// logRx logs the Ethernet header of a frame returned by the driver.
func (r *runner) logRx(frame []byte) {
	efrm, err := ethernet.NewFrame(frame)
	if err == nil {
		err = efrm.Validate()
	}
	if err != nil {
		r.log.Info("rx", slog.Int("len", len(frame)), slog.String("err", err.Error()))
		return
	}
	r.log.Info("rx", internal.SlogAddr6("src", efrm.SourceHardwareAddr()),
		slog.String("type", efrm.EtherTypeOrSize().String()), slog.Int("payload", len(efrm.Payload())))
}

// attachTap bridges the simulated wire to tap. Frames read from tap are
// buffered according to its MTU.
func (r *runner) attachTap(tap *internal.Tap) error {
	mtu, err := tap.MTU()
	if err != nil {
		return err
	}
	if mtu > r.drv.MTU() {
		r.log.Warn("tap MTU exceeds driver MTU, long frames are dropped",
			slog.Int("tap", mtu), slog.Int("driver", r.drv.MTU()))
	}
	r.tap = tap
	r.tapbuf = make([]byte, mtu+14)
	return nil
}

// bridgeIn moves frames read from the TAP interface onto the simulated wire.
func (r *runner) bridgeIn() (n int) {
	if r.tap == nil {
		return 0
	}
	buf := r.tapbuf
	for {
		nr, err := r.tap.ReadFrame(buf)
		if err != nil {
			r.log.Error("tap read", slog.String("err", err.Error()))
			return n
		} else if nr == 0 {
			return n
		}
		r.board.MAC.Receive(ethernet.AppendPadding(buf[:nr:nr]))
		r.report.Bridged++
		r.report.Injected++
		n++
	}
}

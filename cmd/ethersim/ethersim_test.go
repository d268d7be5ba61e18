package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/edmac"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScenarioRun(t *testing.T) {
	sc, err := LoadScenario("testdata/scenario.yaml")
	if err != nil {
		t.Fatal(err)
	}
	r, err := newRunner(sc, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	rep, err := r.run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Steps != sc.Steps {
		t.Errorf("ran %d steps, want %d", rep.Steps, sc.Steps)
	}
	if !rep.LinkUp {
		t.Error("link not up at end of scenario")
	}
	if rep.Echoes != 8 {
		t.Errorf("echoes %d, want 8", rep.Echoes)
	}
	want := edmac.Stats{RxFrames: 8, RxErrors: 1, TxFrames: 8, LinkUps: 3, LinkDowns: 1, Wakeups: 1}
	if rep.Stats != want {
		t.Errorf("stats %+v, want %+v", rep.Stats, want)
	}
	mac, _ := sc.HardwareAddr()
	if mac != etherc.HardwareAddrFromUID([]byte{0x3a, 0x00, 0x45, 0x00, 0x18, 0x51, 0x33, 0x34, 0x37, 0x36, 0x39, 0x30}) {
		t.Errorf("MAC %x not derived from uid", mac)
	}
}

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte("mac: 02:00:00:00:00:02\n"))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Steps != 100 || sc.Peer.Port != 7 {
		t.Errorf("defaults not applied: %+v", sc)
	}
	adv, _ := sc.PartnerAdvertisement()
	if adv.LinkMode().String() != "100M-F" {
		t.Errorf("default partner resolves to %s", adv.LinkMode())
	}
	bad := []string{
		"steps: 10\n",                             // No address.
		"mac: zz\n",                               // Bad address.
		"mac: 02:00:00:00:00:02\npartner: [1G]\n", // Unknown ability.
		"mac: 02:00:00:00:00:02\nevents: [{at: 1, action: explode}]\n",
		"mac: 02:00:00:00:00:02\nsteps: 5\nevents: [{at: 5, action: udp}]\n",
	}
	for _, src := range bad {
		_, err := ParseScenario([]byte(src))
		if err == nil {
			t.Errorf("no error for %q", src)
		}
	}
	_, err = ParseScenario([]byte("mac: 02:00:00:00:00:02\nevents: [{at: 1, action: explode}]\n"))
	if !errors.Is(err, errScenario) {
		t.Errorf("unexpected error kind %v", err)
	}
}

func TestEchoAppARP(t *testing.T) {
	mac := [6]byte{0x02, 0, 0, 0, 0, 2}
	ip := netip.MustParseAddr("192.168.10.2")
	app := newEchoApp(mac, ip)
	peer := net.HardwareAddr{0x02, 0, 0, 0, 0, 1}
	eth := layers.Ethernet{SrcMAC: peer, DstMAC: layers.EthernetBroadcast, EthernetType: layers.EthernetTypeARP}
	req := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   peer,
		SourceProtAddress: []byte{192, 168, 10, 1},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    ip.AsSlice(),
	}
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, serializeOpts, &eth, &req)
	if err != nil {
		t.Fatal(err)
	}
	reply, ok := app.reply(buf.Bytes())
	if !ok {
		t.Fatal("no ARP reply")
	}
	if len(reply) < etherc.MinFrameSize {
		t.Errorf("reply not padded: %d", len(reply))
	}
	pkt := gopacket.NewPacket(reply, layers.LayerTypeEthernet, gopacket.Default)
	arp, _ := pkt.Layer(layers.LayerTypeARP).(*layers.ARP)
	if arp == nil || arp.Operation != layers.ARPReply || net.HardwareAddr(arp.SourceHwAddress).String() != "02:00:00:00:00:02" {
		t.Fatalf("bad reply %s", layerSummary(pkt))
	}

	// Requests for other addresses are ignored.
	req.DstProtAddress = []byte{192, 168, 10, 3}
	gopacket.SerializeLayers(buf, serializeOpts, &eth, &req)
	if _, ok := app.reply(buf.Bytes()); ok {
		t.Error("replied to ARP for other address")
	}

	// Unicast frames for other stations and tagged frames are ignored.
	req.DstProtAddress = ip.AsSlice()
	eth.DstMAC = net.HardwareAddr{0x02, 0, 0, 0, 0, 3}
	gopacket.SerializeLayers(buf, serializeOpts, &eth, &req)
	if _, ok := app.reply(buf.Bytes()); ok {
		t.Error("replied to frame for other station")
	}
	eth.DstMAC = layers.EthernetBroadcast
	eth.EthernetType = layers.EthernetTypeDot1Q
	tag := layers.Dot1Q{VLANIdentifier: 5, Type: layers.EthernetTypeARP}
	gopacket.SerializeLayers(buf, serializeOpts, &eth, &tag, &req)
	if _, ok := app.reply(buf.Bytes()); ok {
		t.Error("replied to VLAN tagged frame")
	}
	if app.arps != 1 || app.ignored != 3 {
		t.Errorf("arps=%d ignored=%d, want 1 and 3", app.arps, app.ignored)
	}
}

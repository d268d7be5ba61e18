package main

import (
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/soypat/etherc/ethernet"
)

const echoPort = 7

var serializeOpts = gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}

// echoApp is the network application running on top of the driver. It answers
// ARP requests for its address and echoes UDP datagrams sent to port 7.
type echoApp struct {
	mac [6]byte
	ip  netip.Addr
	buf gopacket.SerializeBuffer

	echoed  int
	arps    int
	ignored int
}

func newEchoApp(mac [6]byte, ip netip.Addr) *echoApp {
	return &echoApp{mac: mac, ip: ip, buf: gopacket.NewSerializeBuffer()}
}

// reply returns the response to frame, if any. The returned slice is valid
// until the next call to reply and does not alias frame.
func (app *echoApp) reply(frame []byte) ([]byte, bool) {
	efrm, err := ethernet.NewFrame(frame)
	if err == nil {
		err = efrm.Validate()
	}
	// Tagged frames and frames for other stations are not served.
	if err != nil || efrm.IsVLAN() || (!efrm.IsBroadcast() && *efrm.DestinationHardwareAddr() != app.mac) {
		app.ignored++
		return nil, false
	}
	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.NoCopy)
	eth, _ := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if eth == nil {
		app.ignored++
		return nil, false
	}
	switch {
	case pkt.Layer(layers.LayerTypeARP) != nil:
		arp := pkt.Layer(layers.LayerTypeARP).(*layers.ARP)
		target, ok := netip.AddrFromSlice(arp.DstProtAddress)
		if arp.Operation != layers.ARPRequest || !ok || target != app.ip {
			break
		}
		err = app.arpReply(eth, arp)
		if err == nil {
			app.arps++
			return ethernet.AppendPadding(app.buf.Bytes()), true
		}
	case pkt.Layer(layers.LayerTypeUDP) != nil:
		ip, _ := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		udp := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if ip == nil || udp.DstPort != echoPort || !ip.DstIP.Equal(net.IP(app.ip.AsSlice())) {
			break
		}
		err = app.udpReply(eth, ip, udp)
		if err == nil {
			app.echoed++
			return ethernet.AppendPadding(app.buf.Bytes()), true
		}
	}
	app.ignored++
	return nil, false
}

func (app *echoApp) arpReply(eth *layers.Ethernet, req *layers.ARP) error {
	replyEth := layers.Ethernet{SrcMAC: app.mac[:], DstMAC: eth.SrcMAC, EthernetType: layers.EthernetTypeARP}
	reply := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPReply,
		SourceHwAddress:   app.mac[:],
		SourceProtAddress: app.ip.AsSlice(),
		DstHwAddress:      req.SourceHwAddress,
		DstProtAddress:    req.SourceProtAddress,
	}
	return gopacket.SerializeLayers(app.buf, serializeOpts, &replyEth, &reply)
}

func (app *echoApp) udpReply(eth *layers.Ethernet, ip *layers.IPv4, udp *layers.UDP) error {
	replyEth := layers.Ethernet{SrcMAC: app.mac[:], DstMAC: eth.SrcMAC, EthernetType: layers.EthernetTypeIPv4}
	replyIP := layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: ip.DstIP, DstIP: ip.SrcIP}
	replyUDP := layers.UDP{SrcPort: udp.DstPort, DstPort: udp.SrcPort}
	replyUDP.SetNetworkLayerForChecksum(&replyIP)
	return gopacket.SerializeLayers(app.buf, serializeOpts, &replyEth, &replyIP, &replyUDP, gopacket.Payload(udp.Payload))
}

// layerSummary returns the decoded layer names of pkt joined by '/'.
func layerSummary(pkt gopacket.Packet) string {
	var s []byte
	for i, l := range pkt.Layers() {
		if i > 0 {
			s = append(s, '/')
		}
		s = append(s, l.LayerType().String()...)
	}
	return string(s)
}

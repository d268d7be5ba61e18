package edmac

import "github.com/soypat/etherc"

// Registers is the ETHERC/EDMAC register block used by the driver.
// Fields are typically pointers into the peripheral's memory map; the
// simulator in package sim provides a software model.
type Registers struct {
	// EDMAC registers.

	EDMR   etherc.Register32 // EDMAC mode register.
	EDTRR  etherc.Register32 // EDMAC transmit request register. Reads 0 when transmission stopped.
	EDRRR  etherc.Register32 // EDMAC receive request register. Reads 0 when reception stopped.
	EESR   etherc.Register32 // EDMAC status register. Write 1 to clear.
	EESIPR etherc.Register32 // EDMAC status interrupt enable register.
	TRSCER etherc.Register32 // Transmit/receive status copy enable register.
	TFTR   etherc.Register32 // Transmit FIFO threshold register.
	FDR    etherc.Register32 // FIFO depth register.
	RMCR   etherc.Register32 // Receive method control register.
	FCFTR  etherc.Register32 // Flow control start FIFO threshold setting register.

	// ETHERC registers.

	ECMR    etherc.Register32 // ETHERC mode register.
	ECSR    etherc.Register32 // ETHERC status register. Write 1 to clear.
	ECSIPR  etherc.Register32 // ETHERC interrupt enable register.
	PSR     etherc.Register32 // PHY status register.
	RFLR    etherc.Register32 // Receive frame maximum length register.
	IPGR    etherc.Register32 // Inter-packet gap register.
	APR     etherc.Register32 // Automatic PAUSE frame register.
	MPR     etherc.Register32 // Manual PAUSE frame register.
	TPAUSER etherc.Register32 // PAUSE frame retransmit count register.
	MAHR    etherc.Register32 // MAC address high register.
	MALR    etherc.Register32 // MAC address low register.

	// Lists latches the descriptor list base addresses (RDLAR, TDLAR).
	Lists DescriptorLists
}

func (r *Registers) validate() error {
	for _, reg := range [...]etherc.Register32{
		r.EDMR, r.EDTRR, r.EDRRR, r.EESR, r.EESIPR, r.TRSCER, r.TFTR, r.FDR, r.RMCR, r.FCFTR,
		r.ECMR, r.ECSR, r.ECSIPR, r.PSR, r.RFLR, r.IPGR, r.APR, r.MPR, r.TPAUSER, r.MAHR, r.MALR,
	} {
		if reg == nil {
			return etherc.ErrInvalidConfig
		}
	}
	if r.Lists == nil {
		return etherc.ErrInvalidConfig
	}
	return nil
}

// EDMR bits.
const (
	EDMRSWR = 1 << 0 // Software reset of ETHERC and EDMAC.
	EDMRDE  = 1 << 6 // Little endian descriptors.
)

// Request register values.
const (
	EDTRRTR = 1 << 0 // Transmit request.
	EDRRRRR = 1 << 0 // Receive request.
	RMCRRNR = 1 << 0 // Receive request bit not reset after a frame: continuous reception.
)

// EESR and EESIPR bits. EESIPR enable bits share positions with EESR status bits.
const (
	EESRCERF  = 1 << 0  // CRC error.
	EESRPRE   = 1 << 1  // PHY receive error.
	EESRRTSF  = 1 << 2  // Frame too short.
	EESRRTLF  = 1 << 3  // Frame too long.
	EESRRRF   = 1 << 4  // Residual-bit frame.
	EESRRMAF  = 1 << 7  // Multicast address frame.
	EESRTRO   = 1 << 8  // Transmit retry over.
	EESRCD    = 1 << 9  // Late collision detected.
	EESRDLC   = 1 << 10 // Loss of carrier detected.
	EESRCND   = 1 << 11 // Carrier not detected.
	EESRRFOF  = 1 << 16 // Receive FIFO overflow.
	EESRRDE   = 1 << 17 // Receive descriptor empty.
	EESRFR    = 1 << 18 // Frame received.
	EESRTFUF  = 1 << 19 // Transmit FIFO underflow.
	EESRTDE   = 1 << 20 // Transmit descriptor empty.
	EESRTC    = 1 << 21 // Frame transfer complete.
	EESRECI   = 1 << 22 // ETHERC status register source.
	EESRADE   = 1 << 23 // Address error.
	EESRRFCOF = 1 << 24 // Receive frame counter overflow.
	EESRRABT  = 1 << 25 // Receive abort detected.
	EESRTABT  = 1 << 26 // Transmit abort detected.
	EESRTWB   = 1 << 30 // Write-back complete.

	// EESRClearAll clears every status bit when written to EESR.
	EESRClearAll = 0x47ff0f9f
	// eesrErrors are the receive and transmit error status bits.
	eesrErrors = EESRCERF | EESRPRE | EESRRTSF | EESRRTLF | EESRRRF | EESRTRO | EESRCD |
		EESRDLC | EESRCND | EESRRFOF | EESRRDE | EESRTFUF | EESRTDE | EESRADE | EESRRFCOF |
		EESRRABT | EESRTABT
)

// ECMR bits.
const (
	ECMRPRM  = 1 << 0  // Promiscuous mode.
	ECMRDM   = 1 << 1  // Full duplex.
	ECMRRTM  = 1 << 2  // 100Mbps bit rate.
	ECMRILB  = 1 << 3  // Internal loopback.
	ECMRTE   = 1 << 5  // Transmit enable.
	ECMRRE   = 1 << 6  // Receive enable.
	ECMRMPDE = 1 << 9  // Magic packet detection enable.
	ECMRTXF  = 1 << 16 // PAUSE frame transmit enable.
	ECMRRXF  = 1 << 17 // PAUSE frame receive enable.
	ECMRPFR  = 1 << 18 // PAUSE frame transfer to descriptors.
)

// ECSR and ECSIPR bits.
const (
	ECSRICD   = 1 << 0 // Illegal carrier detection.
	ECSRMPD   = 1 << 1 // Magic packet detected.
	ECSRLCHNG = 1 << 2 // Link signal changed.
	ECSRPSRTO = 1 << 4 // PAUSE frame retransmit retry over.
	ECSRBFR   = 1 << 5 // Continuous broadcast frame reception.

	// ECSRClearAll clears every status bit when written to ECSR.
	ECSRClearAll = ECSRICD | ECSRMPD | ECSRLCHNG | ECSRPSRTO | ECSRBFR
)

// PSR bits.
const (
	PSRLMON = 1 << 0 // Link signal monitor.
)

// Fixed MAC/DMA configuration values.
const (
	rflrMaxFrame   = 1518       // Receive frame maximum length including FCS.
	ipgr96BitTimes = 0x14       // Inter-packet gap of 96 bit times.
	fdrDepth2048   = 0x00000707 // 2048 byte transmit and receive FIFO.
	fcftrDefault   = 0x00070005 // Flow control start: 8 frames or 1536 bytes in receive FIFO.
	tftrStoreFwd   = 0          // Transmit after the whole frame is in the FIFO.
	tpauserNoLimit = 0          // Unlimited PAUSE frame retransmissions.
)

package epaper

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/BeatGlow/epaper/conn"
	"github.com/BeatGlow/epaper/internal/log"
)

// Conn errors.
var (
	ErrResetPin = errors.New("epaper: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("epaper: data/command (DC) GPIO pin is invalid")
	ErrBusyPin  = errors.New("epaper: busy GPIO pin is invalid")
)

// Conn is the connection interface for communicating with hardware.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Busy reads the busy pin.
	Busy() gpio.Level

	// Command sends a command byte with optional arguments.
	Command(byte, ...byte) error

	// Data sends data bytes.
	Data(...byte) error
}

// control holds the pins shared by all transports.
type control struct {
	reset gpio.PinOut
	busy  gpio.PinIn
}

func newControl(reset gpio.PinOut, busy gpio.PinIn) (control, error) {
	if reset == nil || reset == gpio.INVALID {
		return control{}, ErrResetPin
	}
	if busy == nil || busy == gpio.INVALID {
		return control{}, ErrBusyPin
	}
	if err := busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return control{}, fmt.Errorf("epaper: busy pin %s: %w", busy, err)
	}
	if err := reset.Out(gpio.High); err != nil {
		return control{}, fmt.Errorf("epaper: reset pin %s: %w", reset, err)
	}
	return control{reset: reset, busy: busy}, nil
}

func (c control) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c control) Busy() gpio.Level {
	return c.busy.Read()
}

// BitBangConfig describes a bus driven from plain GPIO pins.
type BitBangConfig struct {
	Clock      gpio.PinOut
	Data       gpio.PinOut
	ChipSelect gpio.PinOut
	DC         gpio.PinOut
	Reset      gpio.PinOut
	Busy       gpio.PinIn

	// Sequence is the bit framing expected by the controller.
	Sequence conn.Sequence

	// MaxSpeed limits the clock, zero toggles as fast as possible.
	MaxSpeed physic.Frequency
}

type bitBangConn struct {
	control
	bus *conn.BitBang
}

// OpenBitBang sets up a bit-banged connection.
func OpenBitBang(config *BitBangConfig) (Conn, error) {
	if config == nil {
		return nil, errors.New("epaper: bit-bang configuration is required")
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}

	ctrl, err := newControl(config.Reset, config.Busy)
	if err != nil {
		return nil, err
	}

	bus, err := conn.NewBitBang(config.Clock, config.Data, config.ChipSelect, config.DC, config.Sequence, config.MaxSpeed)
	if err != nil {
		return nil, err
	}

	return &bitBangConn{
		control: ctrl,
		bus:     bus,
	}, nil
}

func (c *bitBangConn) String() string {
	return c.bus.String()
}

func (c *bitBangConn) Close() error {
	return c.bus.Close()
}

func (c *bitBangConn) Command(cmnd byte, data ...byte) (err error) {
	if err = c.bus.Command(cmnd); err != nil {
		return
	}
	if len(data) > 0 {
		_, err = c.bus.Write(data)
	}
	return
}

func (c *bitBangConn) Data(data ...byte) (err error) {
	if len(data) > 0 {
		_, err = c.bus.Write(data)
	}
	return
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	// Port is the periph SPI port name, empty selects the first port.
	Port      string
	Mode      spi.Mode
	MaxSpeed  physic.Frequency
	BatchSize int
	Reset     gpio.PinOut
	DC        gpio.PinOut
	CS        gpio.PinOut
	Busy      gpio.PinIn
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Mode:      spi.Mode0,
	MaxSpeed:  4 * physic.MegaHertz,
	BatchSize: conn.DefaultBatchSize,
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []physic.Frequency{
	500 * physic.KiloHertz,
	1 * physic.MegaHertz,
	2 * physic.MegaHertz,
	4 * physic.MegaHertz,
	8 * physic.MegaHertz,
	10 * physic.MegaHertz,
	16 * physic.MegaHertz,
	20 * physic.MegaHertz,
}

type spiConn struct {
	control
	bus     *conn.SPI
	dc      gpio.PinOut
	dcLevel gpio.Level
	dcValid bool
	cs      gpio.PinOut
}

// OpenSPI opens a hardware SPI connection.
func OpenSPI(config *SPIConfig) (Conn, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}
	if config.MaxSpeed == 0 {
		config.MaxSpeed = DefaultSPIConfig.MaxSpeed
	}

	var valid bool
	for _, speed := range ValidSPISpeeds {
		if valid = speed == config.MaxSpeed; valid {
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("epaper: invalid SPI speed %s", config.MaxSpeed)
	}

	bus, err := conn.OpenSPI(config.Port, config.MaxSpeed, config.Mode)
	if err != nil {
		return nil, err
	}
	c, err := newSPIConn(bus, config)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return c, nil
}

// NewSPI wraps an already opened SPI port.
func NewSPI(port spi.PortCloser, config *SPIConfig) (Conn, error) {
	bus, err := conn.NewSPI(port, config.MaxSpeed, config.Mode)
	if err != nil {
		return nil, err
	}
	return newSPIConn(bus, config)
}

func newSPIConn(bus *conn.SPI, config *SPIConfig) (*spiConn, error) {
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}
	ctrl, err := newControl(config.Reset, config.Busy)
	if err != nil {
		return nil, err
	}
	bus.SetBatchSize(config.BatchSize)

	c := &spiConn{
		control: ctrl,
		bus:     bus,
		dc:      config.DC,
	}
	if config.CS != nil && config.CS != gpio.INVALID {
		c.cs = config.CS
	}
	return c, nil
}

func (c *spiConn) String() string {
	return c.bus.String()
}

func (c *spiConn) Close() error {
	return c.bus.Close()
}

func (c *spiConn) updateDC(level gpio.Level) error {
	if !c.dcValid || c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel, c.dcValid = level, true
	}
	return nil
}

func (c *spiConn) updateCS(level gpio.Level) error {
	if c.cs == nil {
		return nil
	}
	return c.cs.Out(level)
}

func (c *spiConn) Command(cmnd byte, data ...byte) (err error) {
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	if err = c.updateDC(gpio.Low); err != nil {
		return
	}
	if _, err = c.bus.Write([]byte{cmnd}); err != nil {
		return
	}
	if len(data) > 0 {
		if err = c.updateDC(gpio.High); err != nil {
			return
		}
		if err = c.write(data); err != nil {
			return
		}
	}
	return c.updateCS(gpio.High)
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.updateDC(gpio.High); err != nil {
		return
	}
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	if err = c.write(data); err != nil {
		return
	}
	return c.updateCS(gpio.High)
}

func (c *spiConn) write(data []byte) error {
	if debug {
		log.Debug("spi write", "bytes", len(data))
	}
	_, err := c.bus.Write(data)
	return err
}

package conn

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// DefaultBatchSize matches the default spidev transfer buffer.
const DefaultBatchSize = 4096

// SPI is a write-only hardware SPI bus.
type SPI struct {
	port      spi.PortCloser
	conn      spi.Conn
	maxSpeed  physic.Frequency
	batchSize int
}

// OpenSPI opens the SPI port by name, use an empty name to select the first port
// that was registered.
func OpenSPI(name string, maxSpeed physic.Frequency, mode spi.Mode) (*SPI, error) {
	port, err := spireg.Open(name)
	if err != nil {
		return nil, err
	}
	c, err := NewSPI(port, maxSpeed, mode)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return c, nil
}

// NewSPI connects to an already opened port with 8 bits per word.
func NewSPI(port spi.PortCloser, maxSpeed physic.Frequency, mode spi.Mode) (*SPI, error) {
	c, err := port.Connect(maxSpeed, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("conn: SPI connect: %w", err)
	}
	return &SPI{
		port:      port,
		conn:      c,
		maxSpeed:  maxSpeed,
		batchSize: DefaultBatchSize,
	}, nil
}

func (c *SPI) String() string {
	return fmt.Sprintf("SPI %s max speed=%s", c.conn, c.maxSpeed)
}

// Close the underlying port.
func (c *SPI) Close() error {
	return c.port.Close()
}

// SetBatchSize limits the number of bytes per transfer.
func (c *SPI) SetBatchSize(n int) {
	if n <= 0 {
		n = DefaultBatchSize
	}
	c.batchSize = n
}

// Write transmits b in transfers of at most the batch size.
func (c *SPI) Write(b []byte) (n int, err error) {
	for len(b) > 0 {
		chunk := b
		if len(chunk) > c.batchSize {
			chunk = chunk[:c.batchSize]
		}
		if err = c.conn.Tx(chunk, nil); err != nil {
			return
		}
		n += len(chunk)
		b = b[len(chunk):]
	}
	return
}

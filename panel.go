package epaper

import (
	"errors"
	"fmt"
	"time"

	"github.com/BeatGlow/epaper/internal/log"
)

// BusyPollInterval is the delay between two reads of the busy line.
const BusyPollInterval = 10 * time.Millisecond

// Panel drives one e-paper controller described by a Variant.
//
// A Panel is not safe for concurrent use; the caller owns the whole
// reset, init, write, refresh and sleep sequence.
type Panel struct {
	c       Conn
	variant *Variant
	state   State
	mode    Mode

	// retained is set when the controller kept its registers through deep sleep, so
	// a hardware reset is enough to continue with partial updates.
	retained   bool
	retainable bool

	// window is the number of plane bytes the current RAM window accepts,
	// zero when the full panel memory is addressed.
	window int

	// sleep is replaced in tests.
	sleep func(time.Duration)
}

// NewPanel binds a connection to a panel variant. No commands are sent until
// HWReset is called.
func NewPanel(c Conn, variant *Variant) (*Panel, error) {
	if c == nil {
		return nil, errors.New("epaper: connection is required")
	}
	if variant == nil {
		return nil, ErrVariant
	}
	return &Panel{
		c:       c,
		variant: variant,
		sleep:   time.Sleep,
	}, nil
}

func (p *Panel) String() string {
	return fmt.Sprintf("%s on %s (%s)", p.variant, p.c, p.state)
}

// Variant of the panel.
func (p *Panel) Variant() *Variant {
	return p.variant
}

// State of the panel session.
func (p *Panel) State() State {
	return p.state
}

// Mode the panel was last configured in.
func (p *Panel) Mode() Mode {
	return p.mode
}

// Retained reports if the panel was reset out of deep sleep with its registers
// intact, so RAM can be written for a partial update without Init.
func (p *Panel) Retained() bool {
	return p.state == Reset && p.retained
}

// Close the connection.
func (p *Panel) Close() error {
	return p.c.Close()
}

// errorHandler keeps the first error of a series of bus operations.
type errorHandler struct {
	p   *Panel
	err error
}

func (eh *errorHandler) command(c byte, data ...byte) {
	if eh.err == nil {
		eh.err = eh.p.c.Command(c, data...)
	}
}

func (eh *errorHandler) run(program Program) {
	for _, step := range program {
		eh.command(step.Cmd, step.Data...)
		if step.Wait {
			eh.waitUntilIdle()
		}
	}
}

func (eh *errorHandler) waitUntilIdle() {
	if eh.err == nil {
		eh.p.waitUntilIdle()
	}
}

// waitUntilIdle blocks until the controller signals ready; there is no timeout.
func (p *Panel) waitUntilIdle() {
	for p.c.Busy() != p.variant.BusyReady {
		p.sleep(BusyPollInterval)
	}
}

// HWReset pulses the reset line and waits for the controller. It is valid in any
// state.
func (p *Panel) HWReset() error {
	if debug {
		log.Debug("panel reset", "panel", p.variant.Name, "state", p.state)
	}

	retained := p.state == Sleeping && p.retainable && p.variant.PartialCapable()

	eh := errorHandler{p: p}
	p.sleep(p.variant.ResetDelay)
	if eh.err = p.c.Reset(false); eh.err == nil {
		p.sleep(p.variant.ResetLow)
		eh.err = p.c.Reset(true)
	}
	if eh.err == nil {
		p.sleep(p.variant.ResetHigh)
	}
	eh.waitUntilIdle()
	eh.run(p.variant.PostReset)
	if eh.err != nil {
		return eh.err
	}

	p.state = Reset
	p.retained = retained
	p.window = 0
	return nil
}

// Init runs the register program for mode m, the panel must have been reset.
func (p *Panel) Init(m Mode) error {
	if p.state != Reset {
		return fmt.Errorf("%w: init requires a reset panel, panel is %s", ErrState, p.state)
	}
	program, ok := p.variant.Init[m]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrMode, m, p.variant.Name)
	}
	if debug {
		log.Debug("panel init", "panel", p.variant.Name, "mode", m)
	}

	eh := errorHandler{p: p}
	eh.run(program)
	if eh.err != nil {
		return eh.err
	}

	p.state = Configured
	p.mode = m
	p.retained = false
	p.window = 0
	return nil
}

// access checks the state for RAM access and returns the mode the access runs in.
// promote is set for a reset panel that retained its registers; it becomes a partial
// session once the access is known to succeed.
func (p *Panel) access(op string) (m Mode, promote bool, err error) {
	switch {
	case p.state == Configured:
		return p.mode, false, nil
	case p.state == Reset && p.retained:
		return Partial, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s requires a configured panel, panel is %s", ErrState, op, p.state)
	}
}

func (p *Panel) promote() {
	p.state = Configured
	p.mode = Partial
	p.retained = false
}

// PartialWindow selects a RAM window for the next plane write. The window stays
// active until the next refresh.
func (p *Panel) PartialWindow(x, y, width, height int) error {
	if p.variant.Window == nil {
		return fmt.Errorf("%w: %s has no partial refresh", ErrMode, p.variant.Name)
	}
	if p.state == Configured && p.mode == Gray4 {
		return fmt.Errorf("%w: partial window in %s mode", ErrMode, p.mode)
	}
	program, size, err := p.variant.Window(x, y, width, height)
	if err != nil {
		return err
	}
	_, promote, err := p.access("partial window")
	if err != nil {
		return err
	}
	if promote {
		p.promote()
	}

	eh := errorHandler{p: p}
	eh.run(program)
	if eh.err != nil {
		return eh.err
	}
	p.window = size
	return nil
}

// WritePlane streams data into a RAM plane. The data must fill the active window,
// or the whole plane when no window is selected.
func (p *Panel) WritePlane(plane Plane, data []byte) error {
	if int(plane) >= len(p.variant.Planes) {
		return fmt.Errorf("%w: %s on %s", ErrPlane, plane, p.variant.Name)
	}
	mode, promote, err := p.access("write plane")
	if err != nil {
		return err
	}

	size := p.window
	if size == 0 {
		size = p.variant.PlaneSize(mode)
	}
	if len(data) != size {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrPlaneSize, len(data), size)
	}
	if promote {
		p.promote()
	}
	if debug {
		log.Debug("panel write", "panel", p.variant.Name, "plane", plane, "bytes", len(data))
	}
	return p.c.Command(p.variant.Planes[plane], data...)
}

// Refresh activates the display update for mode m and waits for it to finish.
// Grayscale refreshes need a panel configured for grayscale, full and partial
// refreshes need one that is not.
func (p *Panel) Refresh(m Mode) error {
	if p.state != Configured {
		return fmt.Errorf("%w: refresh requires a configured panel, panel is %s", ErrState, p.state)
	}
	program, ok := p.variant.Refresh[m]
	if !ok || (m == Gray4) != (p.mode == Gray4) {
		return fmt.Errorf("%w: %s refresh on a panel configured for %s", ErrMode, m, p.mode)
	}
	if debug {
		log.Debug("panel refresh", "panel", p.variant.Name, "mode", m)
	}

	p.state = Refreshing
	eh := errorHandler{p: p}
	eh.run(program)
	p.state = Configured
	p.window = 0
	return eh.err
}

// Clear fills every plane used in the configured mode with value and refreshes.
func (p *Panel) Clear(value byte) error {
	_, promote, err := p.access("clear")
	if err != nil {
		return err
	}
	if promote {
		p.promote()
	}
	planes := 1
	if e, ok := p.variant.Encoders[p.mode]; ok {
		planes = e.Planes()
	}

	p.window = 0
	data := make([]byte, p.variant.PlaneSize(p.mode))
	for i := range data {
		data[i] = value
	}
	for i := 0; i < planes; i++ {
		if err := p.WritePlane(Plane(i), data); err != nil {
			return err
		}
	}
	return p.Refresh(p.mode)
}

// DeepSleep powers the controller down. Only a hardware reset wakes it up again.
func (p *Panel) DeepSleep() error {
	if p.state != Configured && p.state != Reset {
		return fmt.Errorf("%w: deep sleep requires a reset or configured panel, panel is %s", ErrState, p.state)
	}
	if debug {
		log.Debug("panel sleep", "panel", p.variant.Name)
	}

	retainable := (p.state == Configured && p.mode != Gray4) || (p.state == Reset && p.retained)

	eh := errorHandler{p: p}
	eh.run(p.variant.Sleep)
	if eh.err != nil {
		return eh.err
	}
	p.state = Sleeping
	p.retainable = retainable
	p.retained = false
	return nil
}

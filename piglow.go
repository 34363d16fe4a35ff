// Package piglow drives a PiGlow board: 18 LEDs on three spiral arms
// behind an SN3218 driver on the I2C bus.
//
// All bus access goes through a Controller, which owns the bus handle
// exclusively and applies state changes strictly in submission order.
package piglow

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"libpi.so/piglow/internal/i2cbus"
	"libpi.so/piglow/sn3218"
)

// Transport is the two-wire bus connection a Controller writes to. It is
// treated as a black box that can fail; the Controller never retries a
// failed write.
type Transport interface {
	// Write issues one bus transaction.
	Write(frame []byte) error
	// Close releases the bus handle.
	Close() error
}

var (
	// ErrTimeout is returned when a blocking call exceeds its deadline.
	// The controller itself is unaffected and keeps draining.
	ErrTimeout = errors.New("timed out waiting for controller")
	// ErrStopped is returned for requests against a controller that has
	// terminated.
	ErrStopped = errors.New("controller is stopped")
)

// Options configures a Controller.
type Options struct {
	// Bus is the i2creg bus name or number, e.g. "1" or "/dev/i2c-1".
	// Empty selects the first available bus.
	Bus string
	// Name identifies this instance in logs and registries. Defaults to
	// "piglow".
	Name string
	// Logger receives controller events. Defaults to slog.Default().
	Logger *slog.Logger
	// Transport overrides the bus connection. When nil, the I2C bus named
	// by Bus is opened. Tests use this to substitute a fake bus.
	Transport Transport
}

type reqKind uint8

const (
	reqApply reqKind = iota
	reqWait
	reqStop
)

type request struct {
	kind   reqKind
	frames [][]byte
	reply  chan error
}

// Controller owns one SN3218 bus connection. State changes are serialized
// through a single ordered queue; exactly one goroutine ever writes to the
// transport.
type Controller struct {
	name   string
	logger *slog.Logger
	tr     Transport

	reqs     chan request
	done     chan struct{} // run loop has terminated
	released chan struct{} // bus handle has been closed

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Start opens the bus and brings the device up: output stage on, all LEDs
// enabled, powers latched at zero. On any failure the bus is released and
// an error is returned; no controller is running afterwards.
func Start(opts Options) (*Controller, error) {
	if opts.Name == "" {
		opts.Name = "piglow"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	tr := opts.Transport
	if tr == nil {
		bus, err := i2cbus.Open(opts.Bus, sn3218.I2CAddr)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open I2C bus")
		}
		tr = bus
	}

	c := &Controller{
		name:     opts.Name,
		logger:   opts.Logger.With("piglow", opts.Name),
		tr:       tr,
		reqs:     make(chan request, 32),
		done:     make(chan struct{}),
		released: make(chan struct{}),
	}

	allOn, _ := sn3218.MaskBits(enableAll())
	for _, frame := range [][]byte{
		sn3218.EnableOutputFrame(),
		allOn.Frame(),
		sn3218.UpdateFrame(),
	} {
		if err := tr.Write(frame); err != nil {
			c.closeTransport()
			return nil, errors.Wrapf(err, "failed to write %s", sn3218.Command(frame[0]))
		}
	}

	go c.run()
	go c.monitor()

	c.logger.Debug("controller running", "bus", opts.Bus)
	return c, nil
}

func enableAll() []bool {
	bits := make([]bool, sn3218.NumLEDs)
	for i := range bits {
		bits[i] = true
	}
	return bits
}

// Name returns the instance name given at Start.
func (c *Controller) Name() string { return c.name }

// Done is closed once the controller has terminated and the bus handle has
// been released, whatever the cause.
func (c *Controller) Done() <-chan struct{} { return c.released }

// Err reports why the controller terminated. It returns nil while the
// controller runs and after a clean Stop.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) setErr(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

// terminalErr is what blocked or late callers observe after termination.
func (c *Controller) terminalErr() error {
	if err := c.Err(); err != nil {
		return err
	}
	return ErrStopped
}

// run is the only goroutine that touches the transport after Start.
func (c *Controller) run() {
	defer close(c.done)
	defer func() {
		if p := recover(); p != nil {
			c.setErr(errors.Errorf("controller panicked: %v", p))
			c.logger.Error("controller panicked", "panic", fmt.Sprint(p))
		}
	}()

	for r := range c.reqs {
		switch r.kind {
		case reqApply:
			if !c.writeFrames(r.frames) {
				return
			}
		case reqWait:
			// Everything enqueued before this barrier has been
			// written by now.
			r.reply <- nil
		case reqStop:
			c.writeFrames([][]byte{
				sn3218.Mask{}.Frame(),
				sn3218.UpdateFrame(),
			})
			c.logger.Debug("controller stopping")
			return
		}
	}
}

func (c *Controller) writeFrames(frames [][]byte) bool {
	for _, frame := range frames {
		if err := c.tr.Write(frame); err != nil {
			// A failed write is fatal to this controller. No retry,
			// no partial recovery; terminate and let cleanup run.
			c.setErr(errors.Wrapf(err, "failed to write %s", sn3218.Command(frame[0])))
			c.logger.Error("bus write failed",
				"command", sn3218.Command(frame[0]).String(),
				"error", err)
			return false
		}
	}
	return true
}

// monitor watches the run loop and releases the bus handle exactly once,
// whether the loop stopped cleanly, hit a write failure, or panicked.
func (c *Controller) monitor() {
	<-c.done
	c.closeTransport()
	close(c.released)
}

func (c *Controller) closeTransport() {
	c.closeOnce.Do(func() {
		if err := c.tr.Close(); err != nil {
			c.logger.Warn("failed to close bus", "error", err)
		}
	})
}

// enqueue submits frames as one fire-and-forget request. A nil return
// means queued, not yet applied.
func (c *Controller) enqueue(frames ...[]byte) error {
	// Checked first so a request against a stopped controller fails
	// instead of landing in the abandoned queue.
	select {
	case <-c.done:
		return c.terminalErr()
	default:
	}

	select {
	case c.reqs <- request{kind: reqApply, frames: frames}:
		return nil
	case <-c.done:
		return c.terminalErr()
	}
}

// SetEnable stages the enable mask and latches it.
func (c *Controller) SetEnable(m sn3218.Mask) error {
	return c.enqueue(m.Frame(), sn3218.UpdateFrame())
}

// SetEnableBits packs 18 booleans into an enable mask and applies it.
func (c *Controller) SetEnableBits(bits []bool) error {
	m, err := sn3218.MaskBits(bits)
	if err != nil {
		return err
	}
	return c.SetEnable(m)
}

// SetEnableBytes applies a pre-packed 3-byte enable mask.
func (c *Controller) SetEnableBytes(b []byte) error {
	m, err := sn3218.MaskBytes(b)
	if err != nil {
		return err
	}
	return c.SetEnable(m)
}

// SetPower stages the power vector and latches it.
func (c *Controller) SetPower(p sn3218.Powers) error {
	return c.enqueue(p.Frame(), sn3218.UpdateFrame())
}

// SetPowerLevels packs 18 integers, each 0..255, into a power vector and
// applies it.
func (c *Controller) SetPowerLevels(levels []int) error {
	p, err := sn3218.PowerLevels(levels)
	if err != nil {
		return err
	}
	return c.SetPower(p)
}

// SetPowerBytes applies a raw 18-byte power vector.
func (c *Controller) SetPowerBytes(b []byte) error {
	p, err := sn3218.PowerBytes(b)
	if err != nil {
		return err
	}
	return c.SetPower(p)
}

// SetEnableAndPower stages the mask and the power vector back-to-back with
// a single trailing latch, so both take effect in the same update and the
// LEDs never show a half-applied state.
func (c *Controller) SetEnableAndPower(m sn3218.Mask, p sn3218.Powers) error {
	return c.enqueue(m.Frame(), p.Frame(), sn3218.UpdateFrame())
}

// SetStates applies 18 (enabled, power) pairs as one combined update.
func (c *Controller) SetStates(states []sn3218.State) error {
	m, p, err := sn3218.States(states)
	if err != nil {
		return err
	}
	return c.SetEnableAndPower(m, p)
}

// MapEnable applies fn across the topology in wire order and applies the
// resulting enable mask.
func (c *Controller) MapEnable(fn func(LED) (bool, error)) error {
	m, err := MapEnable(fn)
	if err != nil {
		return err
	}
	return c.SetEnable(m)
}

// MapPower applies fn across the topology in wire order and applies the
// resulting power vector.
func (c *Controller) MapPower(fn func(LED) (byte, error)) error {
	p, err := MapPower(fn)
	if err != nil {
		return err
	}
	return c.SetPower(p)
}

// MapState applies fn across the topology in wire order and applies the
// resulting mask and power vector as one combined update.
func (c *Controller) MapState(fn func(LED) (sn3218.State, error)) error {
	m, p, err := MapState(fn)
	if err != nil {
		return err
	}
	return c.SetEnableAndPower(m, p)
}

// Wait blocks until every request enqueued before it has been written to
// the bus. It says nothing about requests enqueued after it. A timeout
// <= 0 waits forever; on expiry the caller gets ErrTimeout while the
// controller keeps draining.
func (c *Controller) Wait(timeout time.Duration) error {
	r := request{kind: reqWait, reply: make(chan error, 1)}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case c.reqs <- r:
	case <-c.done:
		return c.terminalErr()
	case <-expired:
		return ErrTimeout
	}

	select {
	case err := <-r.reply:
		return err
	case <-c.done:
		return c.terminalErr()
	case <-expired:
		return ErrTimeout
	}
}

// Stop drains every request enqueued before it, switches all LEDs off, and
// releases the bus handle. It returns once the handle is released or the
// timeout expires; on ErrTimeout the controller still finishes shutting
// down on its own.
func (c *Controller) Stop(timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case c.reqs <- request{kind: reqStop}:
	case <-c.done:
	case <-expired:
		return ErrTimeout
	}

	select {
	case <-c.released:
		return c.Err()
	case <-expired:
		return ErrTimeout
	}
}

// Package i2cbus opens the host I2C bus and addresses one device on it.
package i2cbus

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus is one device on an open I2C bus. Write sends raw register frames to
// that device; Close releases the bus.
type Bus struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// Open initializes the host drivers and opens the named bus, addressing
// the device at addr. name may be a bus number ("1"), a device path
// ("/dev/i2c-1"), or empty for the first available bus.
func Open(name string, addr uint16) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize host drivers")
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open I2C bus %q", name)
	}

	return New(bus, addr), nil
}

// New wraps an already-open bus. The caller hands over ownership; Close
// closes it.
func New(bus i2c.BusCloser, addr uint16) *Bus {
	return &Bus{
		bus: bus,
		dev: i2c.Dev{Bus: bus, Addr: addr},
	}
}

// Write issues one register-style transaction to the device.
func (b *Bus) Write(frame []byte) error {
	if _, err := b.dev.Write(frame); err != nil {
		return errors.Wrap(err, "i2c write")
	}
	return nil
}

// Close releases the bus handle.
func (b *Bus) Close() error {
	return b.bus.Close()
}

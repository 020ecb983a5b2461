package sensor

import (
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Switch drives a power-enable line.
type Switch interface {
	Set(on bool) error
}

// Pin is a GPIO output used as a power switch.
type Pin struct {
	pin gpio.PinOut
}

// NewPin wraps an output pin.
func NewPin(p gpio.PinOut) *Pin {
	return &Pin{pin: p}
}

// OpenPin looks up a GPIO by name and drives it low.
func OpenPin(name string) (*Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("gpio %s: %w", name, err)
	}
	return NewPin(p), nil
}

// Set drives the line high when on.
func (p *Pin) Set(on bool) error {
	return p.pin.Out(gpio.Level(on))
}

// Button is an active-low push button with the internal pull-up enabled.
type Button struct {
	pin gpio.PinIn
}

// NewButton configures p as a pulled-up input.
func NewButton(p gpio.PinIn) (*Button, error) {
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, err
	}
	return &Button{pin: p}, nil
}

// OpenButton looks up a GPIO by name and configures it as a button.
func OpenButton(name string) (*Button, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	b, err := NewButton(p)
	if err != nil {
		return nil, fmt.Errorf("gpio %s: %w", name, err)
	}
	return b, nil
}

// Pressed returns the raw, undebounced button level.
func (b *Button) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

// VirtualButton is a button driven from software, e.g. an on-screen control.
type VirtualButton struct {
	pressed atomic.Bool
}

// Pressed returns the raw button level.
func (b *VirtualButton) Pressed() bool {
	return b.pressed.Load()
}

// Set sets the raw button level.
func (b *VirtualButton) Set(pressed bool) {
	b.pressed.Store(pressed)
}

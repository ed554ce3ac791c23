//go:build linux

// services/io/gpio_linux.go
package io

import (
	"github.com/warthog618/go-gpiocdev"

	"pdmcode-go/errcode"
)

// GPIOOutputBank drives a set of character-device GPIO lines as output
// lanes. Lane index is the position in the requested offset list, not
// the chip offset.
type GPIOOutputBank struct {
	lines []*gpiocdev.Line
}

func NewGPIOOutputBank(chip string, offsets []int) (*GPIOOutputBank, error) {
	b := &GPIOOutputBank{}
	for _, off := range offsets {
		line, err := gpiocdev.RequestLine(chip, off, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, &errcode.E{C: errcode.PinInUse, Op: "gpio.request", Err: err}
		}
		b.lines = append(b.lines, line)
	}
	return b, nil
}

func (b *GPIOOutputBank) WriteLane(index int, value int32) error {
	if index < 0 || index >= len(b.lines) {
		return &errcode.E{C: errcode.UnknownPin, Op: "gpio.write"}
	}
	lvl := 0
	if value != 0 {
		lvl = 1
	}
	if err := b.lines[index].SetValue(lvl); err != nil {
		return &errcode.E{C: errcode.Error, Op: "gpio.write", Err: err}
	}
	return nil
}

func (b *GPIOOutputBank) Close() {
	for _, line := range b.lines {
		_ = line.Close()
	}
	b.lines = nil
}

// GPIOInputBank reads digital lines as 0/1 input lanes.
type GPIOInputBank struct {
	lines []*gpiocdev.Line
}

func NewGPIOInputBank(chip string, offsets []int) (*GPIOInputBank, error) {
	b := &GPIOInputBank{}
	for _, off := range offsets {
		line, err := gpiocdev.RequestLine(chip, off, gpiocdev.AsInput)
		if err != nil {
			b.Close()
			return nil, &errcode.E{C: errcode.PinInUse, Op: "gpio.request", Err: err}
		}
		b.lines = append(b.lines, line)
	}
	return b, nil
}

func (b *GPIOInputBank) ReadLane(index int) (int32, error) {
	if index < 0 || index >= len(b.lines) {
		return 0, &errcode.E{C: errcode.UnknownPin, Op: "gpio.read"}
	}
	v, err := b.lines[index].Value()
	if err != nil {
		return 0, &errcode.E{C: errcode.Error, Op: "gpio.read", Err: err}
	}
	return int32(v), nil
}

func (b *GPIOInputBank) Close() {
	for _, line := range b.lines {
		_ = line.Close()
	}
	b.lines = nil
}

// services/io/i2c_adc.go
package io

import (
	"time"

	"tinygo.org/x/drivers"

	"pdmcode-go/errcode"
)

// ADS1015-style 4-lane I2C ADC. Single-shot conversions, one lane per
// ReadLane call.
const (
	adcRegConversion = 0x00
	adcRegConfig     = 0x01

	// Single-shot start, +-4.096V range, 1600 SPS, comparator off.
	adcCfgBase = 0x8583
)

type I2CADC struct {
	bus  drivers.I2C
	addr uint16

	// Raw-count to fixed-point conversion, e.g. 2/1 for mV at the
	// 4.096V range (2mV per 12-bit count).
	ScaleNum int32
	ScaleDen int32

	wbuf [3]byte
	rbuf [2]byte
}

func NewI2CADC(bus drivers.I2C, addr uint16) *I2CADC {
	return &I2CADC{bus: bus, addr: addr, ScaleNum: 2, ScaleDen: 1}
}

func (a *I2CADC) ReadLane(index int) (int32, error) {
	if index < 0 || index > 3 {
		return 0, &errcode.E{C: errcode.UnknownPin, Op: "adc.read"}
	}

	cfg := uint16(adcCfgBase) | uint16(4+index)<<12 // mux AINx vs GND
	a.wbuf[0] = adcRegConfig
	a.wbuf[1] = byte(cfg >> 8)
	a.wbuf[2] = byte(cfg)
	if err := a.bus.Tx(a.addr, a.wbuf[:3], nil); err != nil {
		return 0, &errcode.E{C: errcode.Error, Op: "adc.read", Err: err}
	}

	// 1600 SPS single shot completes well inside 1ms.
	time.Sleep(time.Millisecond)

	a.wbuf[0] = adcRegConversion
	if err := a.bus.Tx(a.addr, a.wbuf[:1], a.rbuf[:]); err != nil {
		return 0, &errcode.E{C: errcode.Error, Op: "adc.read", Err: err}
	}

	raw := int16(a.rbuf[0])<<8 | int16(a.rbuf[1])
	counts := int32(raw >> 4) // 12-bit left-justified
	den := a.ScaleDen
	if den == 0 {
		den = 1
	}
	return counts * a.ScaleNum / den, nil
}

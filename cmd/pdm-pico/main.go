//go:build rp2040

// Pico firmware entry: engine, protection and the companion wire link,
// driven by a baked-in default configuration until a host pushes a
// replacement over the link.
package main

import (
	"context"
	"time"

	"machine"

	"pdmcode-go/bus"
	cfgsvc "pdmcode-go/services/config"
	"pdmcode-go/services/engine"
	"pdmcode-go/services/heartbeat"
	"pdmcode-go/services/protection"
	"pdmcode-go/services/wire"
)

const defaultConfig = `
engine:
  tick_ms: 10
channels:
  - {id: 0, kind: input, name: batt_mV, unit: mV, min: 0, max: 16000}
  - {id: 1, kind: input, name: lamp_mA, unit: mA}
  - {id: 100, kind: output, name: lamp}
  - {id: 200, kind: virtual, name: batt_ok}
functions:
  - {op: greater, output: 200, inputs: [0], params: {rhs: 11000}}
  - {op: scale, output: 100, inputs: [200], params: {num: 1000, den: 1}}
shedding:
  - {output: 100, current_chan: 1, limit_mA: 8000, hold_ms: 200, retry_ms: 1000}
`

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.Background()
	b := bus.NewBus(8)

	guard := protection.NewManager()
	_ = guard.Start(ctx, b.NewConnection("protection"))
	_ = engine.NewService(b.NewConnection("engine"), engine.WithGuard(guard)).Start(ctx)
	_ = heartbeat.NewService(b.NewConnection("heartbeat")).Start(ctx)

	if port, err := wire.OpenUART("uart0", 115200, 0, 1); err == nil {
		_ = wire.NewService(b.NewConnection("wire"), port).Start(ctx)
	} else {
		println("wire disabled:", err.Error())
	}

	if err := cfgsvc.NewService(b.NewConnection("config")).LoadAndPublish([]byte(defaultConfig)); err != nil {
		println("config failed:", err.Error())
	}

	// Slow blink as liveness; the heartbeat topic carries the real
	// diagnostics.
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(500 * time.Millisecond)
		led.Low()
		time.Sleep(500 * time.Millisecond)
	}
}

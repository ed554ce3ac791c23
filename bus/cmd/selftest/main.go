//go:build rp2040

// On-target smoke test for the message bus: flash to a Pico, watch the
// serial console. Solid LED means every check passed.
package main

import (
	"time"

	"machine"

	"pdmcode-go/bus"
)

func expect(sub *bus.Subscription, want string, timeout time.Duration) bool {
	select {
	case got := <-sub.Channel():
		s, ok := got.Payload.(string)
		return ok && s == want
	case <-time.After(timeout):
		return false
	}
}

func expectNone(sub *bus.Subscription, timeout time.Duration) bool {
	select {
	case <-sub.Channel():
		return false
	case <-time.After(timeout):
		return true
	}
}

func testBasicPubSub() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	sub := c.Subscribe(bus.T("engine", "state"))
	c.Publish(c.NewMessage(bus.T("engine", "state"), "hello", false))
	return expect(sub, "hello", 100*time.Millisecond)
}

func testRetained() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	c.Publish(c.NewMessage(bus.T("config", "engine"), "persist", true))
	sub := c.Subscribe(bus.T("config", "engine"))
	return expect(sub, "persist", 100*time.Millisecond)
}

func testRetainedClear() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	c.Publish(c.NewMessage(bus.T("config", "engine"), "old", true))
	c.Publish(c.NewMessage(bus.T("config", "engine"), nil, true))
	sub := c.Subscribe(bus.T("config", "engine"))
	return expectNone(sub, 60*time.Millisecond)
}

func testWildcard() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("test")
	wild := c.Subscribe(bus.T("engine", bus.Wildcard))
	other := c.Subscribe(bus.T("engine", "diag"))

	c.Publish(c.NewMessage(bus.T("engine", "state"), "m1", false))
	if !expect(wild, "m1", 100*time.Millisecond) {
		return false
	}
	return expectNone(other, 60*time.Millisecond)
}

func testDropOldest() bool {
	b := bus.NewBus(2)
	c := b.NewConnection("test")
	sub := c.Subscribe(bus.T("t"))
	for i := 0; i < 4; i++ {
		c.Publish(c.NewMessage(bus.T("t"), string(rune('a'+i)), false))
	}
	// Queue depth 2: only the two newest survive.
	return expect(sub, "c", 100*time.Millisecond) &&
		expect(sub, "d", 100*time.Millisecond)
}

func main() {
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()

	tests := []struct {
		name string
		fn   func() bool
	}{
		{"basic_pub_sub", testBasicPubSub},
		{"retained", testRetained},
		{"retained_clear", testRetainedClear},
		{"wildcard", testWildcard},
		{"drop_oldest", testDropOldest},
	}

	failed := 0
	println("== bus self-test ==")
	for _, tc := range tests {
		if tc.fn() {
			println("[PASS]", tc.name)
		} else {
			println("[FAIL]", tc.name)
			failed++
		}
		time.Sleep(10 * time.Millisecond)
	}
	println("== done ==")

	if failed == 0 {
		for {
			led.High()
			time.Sleep(2 * time.Second)
		}
	}
	for {
		led.High()
		time.Sleep(250 * time.Millisecond)
		led.Low()
		time.Sleep(250 * time.Millisecond)
	}
}

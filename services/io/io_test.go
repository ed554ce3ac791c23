// services/io/io_test.go
package io

import (
	"errors"
	"testing"

	"pdmcode-go/bus"
	"pdmcode-go/services/config"
	"pdmcode-go/types"
)

type fakeInput struct {
	values map[int]int32
	fail   map[int]bool
}

func (f *fakeInput) ReadLane(index int) (int32, error) {
	if f.fail[index] {
		return 0, errors.New("lane fault")
	}
	return f.values[index], nil
}

type fakeOutput struct {
	written map[int]int32
}

func (f *fakeOutput) WriteLane(index int, value int32) error {
	if f.written == nil {
		f.written = map[int]int32{}
	}
	f.written[index] = value
	return nil
}

const ioDoc = `
channels:
  - {id: 0, kind: input, name: batt_mV, device: adc0, index: 0}
  - {id: 1, kind: input, name: load_mA, device: adc0, index: 1}
  - {id: 2, kind: input, name: unbound}
  - {id: 100, kind: output, name: lamp, device: bank0, index: 3}
`

func newIOService(t *testing.T) (*Service, *fakeInput, *fakeOutput, *bus.Connection) {
	t.Helper()
	b := bus.NewBus(16)
	svc := NewService(b.NewConnection("io"))
	in := &fakeInput{values: map[int]int32{}, fail: map[int]bool{}}
	out := &fakeOutput{}
	if err := svc.AddInputDevice("adc0", in); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddOutputDevice("bank0", out); err != nil {
		t.Fatal(err)
	}
	loaded, err := config.Load([]byte(ioDoc))
	if err != nil {
		t.Fatal(err)
	}
	svc.rebind(loaded)
	return svc, in, out, b.NewConnection("test")
}

func TestRebindResolvesOnlyBoundChannels(t *testing.T) {
	svc, _, _, _ := newIOService(t)
	if len(svc.inBinds) != 2 {
		t.Fatalf("input bindings = %d, want 2", len(svc.inBinds))
	}
	if _, ok := svc.outBinds[100]; !ok {
		t.Fatal("output 100 not bound")
	}
}

func TestSweepPublishesBatch(t *testing.T) {
	svc, in, _, conn := newIOService(t)
	sub := conn.Subscribe(bus.T("engine", "samples"))
	defer conn.Unsubscribe(sub)

	in.values[0] = 12500
	in.values[1] = 2300
	svc.sweep()

	select {
	case msg := <-sub.Channel():
		batch, ok := msg.Payload.(types.SampleBatch)
		if !ok {
			t.Fatalf("payload type %T", msg.Payload)
		}
		if len(batch) != 2 {
			t.Fatalf("batch size = %d, want 2", len(batch))
		}
		if batch[0].ID != 0 || batch[0].Value != 12500 {
			t.Fatalf("sample 0 = %+v", batch[0])
		}
	default:
		t.Fatal("no batch published")
	}
}

func TestSweepDropsFailedReads(t *testing.T) {
	svc, in, _, conn := newIOService(t)
	sub := conn.Subscribe(bus.T("engine", "samples"))
	defer conn.Unsubscribe(sub)

	in.values[0] = 100
	in.fail[1] = true
	svc.sweep()

	select {
	case msg := <-sub.Channel():
		batch := msg.Payload.(types.SampleBatch)
		if len(batch) != 1 || batch[0].ID != 0 {
			t.Fatalf("batch = %+v, want only channel 0", batch)
		}
	default:
		t.Fatal("good sample should still publish")
	}
}

func TestMirrorWritesBoundOutputs(t *testing.T) {
	svc, _, out, _ := newIOService(t)
	svc.mirror([]types.OutputLevel{
		{ID: 100, Value: 1000, Enabled: true},
		{ID: 101, Value: 5, Enabled: true}, // unbound: ignored
	})
	if got := out.written[3]; got != 1000 {
		t.Fatalf("lane 3 = %d, want 1000", got)
	}
	if len(out.written) != 1 {
		t.Fatalf("unexpected writes: %+v", out.written)
	}
}

func TestMirrorForcesDisabledAndFaultedToZero(t *testing.T) {
	svc, _, out, _ := newIOService(t)
	svc.mirror([]types.OutputLevel{{ID: 100, Value: 1000, Enabled: false}})
	if got := out.written[3]; got != 0 {
		t.Fatalf("disabled output = %d, want 0", got)
	}
	svc.mirror([]types.OutputLevel{{ID: 100, Value: 1000, Enabled: true, Fault: true}})
	if got := out.written[3]; got != 0 {
		t.Fatalf("faulted output = %d, want 0", got)
	}
}

// fakeI2C answers config writes and hands back a canned conversion.
type fakeI2C struct {
	conversion int16
	lastCfg    uint16
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if len(w) == 3 && w[0] == adcRegConfig {
		f.lastCfg = uint16(w[1])<<8 | uint16(w[2])
		return nil
	}
	if len(w) == 1 && w[0] == adcRegConversion && len(r) == 2 {
		r[0] = byte(uint16(f.conversion) >> 8)
		r[1] = byte(uint16(f.conversion))
		return nil
	}
	return errors.New("unexpected transaction")
}

func TestI2CADCReadLane(t *testing.T) {
	f := &fakeI2C{conversion: 1000 << 4} // 1000 counts, left-justified
	adc := NewI2CADC(f, 0x48)

	v, err := adc.ReadLane(2)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2000 {
		t.Fatalf("value = %d, want 2000 (2mV per count)", v)
	}
	if mux := (f.lastCfg >> 12) & 0x7; mux != 6 {
		t.Fatalf("mux bits = %d, want 6 (AIN2 vs GND)", mux)
	}

	if _, err := adc.ReadLane(4); err == nil {
		t.Fatal("lane 4 should be rejected")
	}
}

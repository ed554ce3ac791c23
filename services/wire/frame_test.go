// services/wire/frame_test.go
package wire

import (
	"bytes"
	"testing"

	"pdmcode-go/bus"
	"pdmcode-go/types"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	frame, err := AppendFrame(nil, FrameDiag, payload)
	if err != nil {
		t.Fatal(err)
	}

	typ, got, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if typ != FrameDiag {
		t.Fatalf("type = %#x", typ)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %v", got)
	}
	if consumed != len(frame) {
		t.Fatalf("consumed %d of %d", consumed, len(frame))
	}
}

func TestDecodeFrameResyncsOnBadMagic(t *testing.T) {
	frame, err := AppendFrame(nil, FrameSnapshot, []byte{9})
	if err != nil {
		t.Fatal(err)
	}
	stream := append([]byte{0x00, 0xFF}, frame...)

	// Two garbage bytes, each consumed one at a time, then the frame.
	off := 0
	for i := 0; i < 2; i++ {
		_, _, consumed, err := DecodeFrame(stream[off:])
		if err == nil || consumed != 1 {
			t.Fatalf("garbage byte %d: consumed=%d err=%v", i, consumed, err)
		}
		off += consumed
	}
	typ, payload, _, err := DecodeFrame(stream[off:])
	if err != nil {
		t.Fatal(err)
	}
	if typ != FrameSnapshot || len(payload) != 1 || payload[0] != 9 {
		t.Fatalf("typ=%#x payload=%v", typ, payload)
	}
}

func TestDecodeFrameRejectsCorruptCRC(t *testing.T) {
	frame, err := AppendFrame(nil, FrameSnapshot, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	frame[6] ^= 0x40 // flip a payload bit

	if _, _, _, err := DecodeFrame(frame); err == nil {
		t.Fatal("corrupt frame accepted")
	}
}

func TestSnapshotCodecRoundTrip(t *testing.T) {
	snap := types.Snapshot{
		TS: 123456789,
		Values: []types.ChannelValue{
			{ID: 0, Value: 12500, Flags: 1},
			{ID: 100, Value: -42, Flags: 3},
			{ID: 1023, Value: 1 << 30, Flags: 0},
		},
	}

	got, err := decodeSnapshot(appendSnapshot(nil, snap))
	if err != nil {
		t.Fatal(err)
	}
	if got.TS != snap.TS || len(got.Values) != 3 {
		t.Fatalf("decoded %+v", got)
	}
	for i := range snap.Values {
		if got.Values[i] != snap.Values[i] {
			t.Fatalf("value %d: %+v != %+v", i, got.Values[i], snap.Values[i])
		}
	}
}

func TestServiceWritesFramedSnapshot(t *testing.T) {
	b := bus.NewBus(16)
	var sink bytes.Buffer
	svc := NewService(b.NewConnection("wire"), &sink)

	snap := types.Snapshot{TS: 1000, Values: []types.ChannelValue{{ID: 5, Value: 7}}}
	svc.send(snap)

	typ, payload, _, err := DecodeFrame(sink.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if typ != FrameSnapshot {
		t.Fatalf("type = %#x", typ)
	}
	got, err := decodeSnapshot(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Values[0].ID != 5 || got.Values[0].Value != 7 {
		t.Fatalf("decoded %+v", got)
	}
}

func TestServiceRateLimitsSnapshots(t *testing.T) {
	b := bus.NewBus(16)
	var sink bytes.Buffer
	svc := NewService(b.NewConnection("wire"), &sink)
	svc.MinIntervalMS = 100

	svc.send(types.Snapshot{TS: 1000})
	first := sink.Len()
	svc.send(types.Snapshot{TS: 1050}) // inside the interval: dropped
	if sink.Len() != first {
		t.Fatal("rate-limited snapshot was written")
	}
	svc.send(types.Snapshot{TS: 1100})
	if sink.Len() == first {
		t.Fatal("snapshot past the interval not written")
	}
}

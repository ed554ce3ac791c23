package types

// ---- Engine state (retained) ----

type EngineState struct {
	Level  string `json:"level"`  // e.g. "idle", "running", "frozen", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}

// EngineDiag mirrors the executor's degradation counters for the
// heartbeat and diagnostic surfaces.
type EngineDiag struct {
	Passes     uint64 `json:"passes"`
	Skipped    uint64 `json:"skipped"`
	UnknownOp  uint64 `json:"unknown_op"`
	BadChannel uint64 `json:"bad_channel"`
	BadSpec    uint64 `json:"bad_spec"`
	Frozen     bool   `json:"frozen"`
	Functions  int    `json:"functions"`
	Channels   int    `json:"channels"`
	TS         int64  `json:"ts_ms"`
}

// ---- I/O samples ----

// InputSample is one fresh hardware reading bound for a
// physical-input channel. Values are fixed-point int32 in the
// channel's configured unit (mV, mA, m°C, ...).
type InputSample struct {
	ID    uint16 `json:"id"`
	Value int32  `json:"value"`
	TS    int64  `json:"ts_ms"`
}

// SampleBatch is a set of readings collected in one I/O sweep. The
// engine applies the whole batch between two passes.
type SampleBatch []InputSample

// ---- Output mirroring ----

// OutputLevel is the post-pass value of one physical-output channel,
// handed to the driver side.
type OutputLevel struct {
	ID      uint16 `json:"id"`
	Value   int32  `json:"value"`
	Enabled bool   `json:"enabled"`
	Fault   bool   `json:"fault"`
}

// ---- Telemetry snapshot (retained) ----

type ChannelValue struct {
	ID    uint16 `json:"id"`
	Value int32  `json:"value"`
	Flags uint8  `json:"flags"`
}

type Snapshot struct {
	TS     int64          `json:"ts_ms"`
	Values []ChannelValue `json:"values"`
}

// ---- Protection ----

// ShedRule ties one physical output to a measured current channel.
// When the measurement exceeds LimitMilliA the output is shed (fault
// flag set, channel disabled); lower-priority loads shed first.
// RestoreMilliA below the limit gives the re-enable hysteresis.
type ShedRule struct {
	Output        uint16 `json:"output"`
	CurrentChan   uint16 `json:"current_chan"`
	LimitMilliA   int32  `json:"limit_mA"`
	RestoreMilliA int32  `json:"restore_mA"`
	Priority      int    `json:"priority"` // lower sheds first
	HoldMS        int32  `json:"hold_ms"`  // overload must persist this long
	RetryMS       int32  `json:"retry_ms"` // wait before restore attempt
}

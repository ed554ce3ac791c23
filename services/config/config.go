// services/config/config.go
package config

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"pdmcode-go/bus"
	"pdmcode-go/channels"
	"pdmcode-go/errcode"
	"pdmcode-go/logic"
	"pdmcode-go/types"
)

// -----------------------------------------------------------------------------
// Document shapes
//
// One YAML (or JSON — yaml.v3 parses both) document describes the whole
// engine: channels, logic functions, shedding rules. The loader turns a
// document into validated engine specs, all-or-nothing: any error
// leaves the previously published configuration active.
// -----------------------------------------------------------------------------

type Document struct {
	Engine    EngineSection `yaml:"engine" json:"engine"`
	Channels  []ChannelDoc  `yaml:"channels" json:"channels"`
	Functions []FunctionDoc `yaml:"functions" json:"functions"`
	Shedding  []ShedDoc     `yaml:"shedding,omitempty" json:"shedding,omitempty"`
}

type EngineSection struct {
	TickMS     int32 `yaml:"tick_ms" json:"tick_ms"`
	MaxDeltaMS int32 `yaml:"max_delta_ms" json:"max_delta_ms"`
}

type ChannelDoc struct {
	ID      int    `yaml:"id" json:"id"`
	Kind    string `yaml:"kind" json:"kind"` // input | output | virtual | system
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Unit    string `yaml:"unit,omitempty" json:"unit,omitempty"`
	Min     int32  `yaml:"min,omitempty" json:"min,omitempty"`
	Max     int32  `yaml:"max,omitempty" json:"max,omitempty"`
	Initial int32  `yaml:"initial,omitempty" json:"initial,omitempty"`
	Device  string `yaml:"device,omitempty" json:"device,omitempty"`
	Index   int    `yaml:"index,omitempty" json:"index,omitempty"`
	Sources []int  `yaml:"sources,omitempty" json:"sources,omitempty"`
}

type FunctionDoc struct {
	Name    string    `yaml:"name,omitempty" json:"name,omitempty"`
	Op      string    `yaml:"op" json:"op"`
	Output  int       `yaml:"output" json:"output"`
	Inputs  []int     `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Enabled *bool     `yaml:"enabled,omitempty" json:"enabled,omitempty"` // default true
	Params  ParamsDoc `yaml:"params,omitempty" json:"params,omitempty"`
}

type ParamsDoc struct {
	Rhs    int32 `yaml:"rhs,omitempty" json:"rhs,omitempty"`
	Lower  int32 `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper  int32 `yaml:"upper,omitempty" json:"upper,omitempty"`
	Num    int32 `yaml:"num,omitempty" json:"num,omitempty"`
	Den    int32 `yaml:"den,omitempty" json:"den,omitempty"`
	Offset int32 `yaml:"offset,omitempty" json:"offset,omitempty"`
	Min    int32 `yaml:"min,omitempty" json:"min,omitempty"`
	Max    int32 `yaml:"max,omitempty" json:"max,omitempty"`

	OnMS       int32 `yaml:"on_ms,omitempty" json:"on_ms,omitempty"`
	OffMS      int32 `yaml:"off_ms,omitempty" json:"off_ms,omitempty"`
	DurationMS int32 `yaml:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	PresetMS   int32 `yaml:"preset_ms,omitempty" json:"preset_ms,omitempty"`

	Window int   `yaml:"window,omitempty" json:"window,omitempty"`
	Alpha  int32 `yaml:"alpha,omitempty" json:"alpha,omitempty"`

	First   int32 `yaml:"first,omitempty" json:"first,omitempty"`
	Last    int32 `yaml:"last,omitempty" json:"last,omitempty"`
	Default int32 `yaml:"default,omitempty" json:"default,omitempty"`
	Step    int32 `yaml:"step,omitempty" json:"step,omitempty"`

	Kp         int32 `yaml:"kp,omitempty" json:"kp,omitempty"`
	Ki         int32 `yaml:"ki,omitempty" json:"ki,omitempty"`
	Kd         int32 `yaml:"kd,omitempty" json:"kd,omitempty"`
	DFiltAlpha int32 `yaml:"d_filt_alpha,omitempty" json:"d_filt_alpha,omitempty"`
	AntiWindup bool  `yaml:"anti_windup,omitempty" json:"anti_windup,omitempty"`
	Reversed   bool  `yaml:"reversed,omitempty" json:"reversed,omitempty"`

	Table *TableDoc `yaml:"table,omitempty" json:"table,omitempty"`
}

// TableDoc covers all three table shapes:
//
//	1D: x + y value lists
//	2D: x + y axes, rows[i][j] = value at (x[i], y[j])
//	3D: x + y + z axes, cells[i][j][k]
type TableDoc struct {
	X     []int32     `yaml:"x,omitempty" json:"x,omitempty"`
	Y     []int32     `yaml:"y,omitempty" json:"y,omitempty"`
	Z     []int32     `yaml:"z,omitempty" json:"z,omitempty"`
	Rows  [][]int32   `yaml:"rows,omitempty" json:"rows,omitempty"`
	Cells [][][]int32 `yaml:"cells,omitempty" json:"cells,omitempty"`
}

type ShedDoc struct {
	Output        int   `yaml:"output" json:"output"`
	CurrentChan   int   `yaml:"current_chan" json:"current_chan"`
	LimitMilliA   int32 `yaml:"limit_mA" json:"limit_mA"`
	RestoreMilliA int32 `yaml:"restore_mA,omitempty" json:"restore_mA,omitempty"`
	Priority      int   `yaml:"priority,omitempty" json:"priority,omitempty"`
	HoldMS        int32 `yaml:"hold_ms,omitempty" json:"hold_ms,omitempty"`
	RetryMS       int32 `yaml:"retry_ms,omitempty" json:"retry_ms,omitempty"`
}

// -----------------------------------------------------------------------------
// Loaded configuration
// -----------------------------------------------------------------------------

// Loaded is the validated, engine-ready configuration published on the
// "config/engine" topic.
type Loaded struct {
	TickMS     int32
	MaxDeltaMS int32
	Channels   []channels.Spec
	Functions  []logic.FuncSpec
	Shedding   []types.ShedRule
}

// Load parses and validates one document.
func Load(raw []byte) (*Loaded, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &errcode.E{C: errcode.InvalidPayload, Op: "config.load", Err: err}
	}
	return build(&doc)
}

// LoadFile reads and loads a document from disk (host builds).
func LoadFile(path string) (*Loaded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "config.load", Err: err}
	}
	return Load(raw)
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

var topicConfigEngine = bus.T("config", "engine")

type Service struct {
	conn *bus.Connection
}

func NewService(conn *bus.Connection) *Service {
	return &Service{conn: conn}
}

// Start is a no-op placeholder for symmetry with other services; the
// loader is driven by LoadAndPublish calls.
func (s *Service) Start(ctx context.Context) error { return nil }

// LoadAndPublish validates raw config bytes and, only on full
// success, publishes the result retained so late subscribers (and the
// engine, on restart) see the active configuration.
func (s *Service) LoadAndPublish(raw []byte) error {
	loaded, err := Load(raw)
	if err != nil {
		return err
	}
	s.conn.Publish(s.conn.NewMessage(topicConfigEngine, loaded, true))
	return nil
}

// LoadFileAndPublish is the host-side convenience wrapper.
func (s *Service) LoadFileAndPublish(path string) error {
	loaded, err := LoadFile(path)
	if err != nil {
		return err
	}
	s.conn.Publish(s.conn.NewMessage(topicConfigEngine, loaded, true))
	return nil
}

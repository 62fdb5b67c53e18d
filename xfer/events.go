// events.go - the typed event stream an external formatter serializes
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package xfer

import "github.com/goccy/go-json"

// EventType distinguishes the three event shapes Copy and Plan emit.
type EventType string

const (
	EventEffectiveConfig EventType = "effective_config"
	EventPlanItem        EventType = "plan_item"
	EventExecuteItem     EventType = "execute_item"
)

// Action is the per-item decision carried on plan/execute events.
type Action string

const (
	ActionCopy      Action = "copy"
	ActionSkip      Action = "skip"
	ActionOverwrite Action = "overwrite"
	ActionUpdate    Action = "update"
	ActionFail      Action = "fail"
)

// EffectiveConfig is the JSON-serializable subset of Configuration -
// everything except the callbacks and logger, which have no sensible
// wire representation.
type EffectiveConfig struct {
	Parallel                  int    `json:"parallel"`
	OnConflict                string `json:"on_conflict"`
	Fsync                     bool   `json:"fsync"`
	PreservePermissions       bool   `json:"preserve_permissions"`
	PreserveTimestamps        bool   `json:"preserve_timestamps"`
	PreserveWindowsAttributes bool   `json:"preserve_windows_attributes"`
	PreserveXattr             bool   `json:"preserve_xattr"`
	MaxDepth                  int    `json:"max_depth"`
	BlockEscapingSymlinks     bool   `json:"block_escaping_symlinks"`
	Reflink                   bool   `json:"reflink"`
}

// Event is one line of the machine-readable event stream: one
// effective_config record up front, then one plan_item or
// execute_item per WorkItem.
type Event struct {
	Type   EventType        `json:"type"`
	Src    string           `json:"src,omitempty"`
	Dst    string           `json:"dst,omitempty"`
	Kind   string           `json:"kind,omitempty"`
	Action Action           `json:"action,omitempty"`
	Bytes  int64            `json:"bytes,omitempty"`
	Error  string           `json:"error_code,omitempty"`
	Config *EffectiveConfig `json:"config,omitempty"`
}

// JSON encodes e as a single compact JSON object.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// JSONLine encodes e as a single JSON object followed by a newline,
// suitable for --output jsonl.
func (e Event) JSONLine() ([]byte, error) {
	b, err := e.JSON()
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

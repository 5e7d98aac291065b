package model

// Action is the kind of change recorded in the log. The values are the ones
// already stored in the remote log collection.
type Action string

// Log actions.
const (
	ActionInbound  Action = "入庫"
	ActionOutbound Action = "出庫"
	ActionCreated  Action = "新增"
	ActionModified Action = "修改"
	ActionDeleted  Action = "刪除"
)

// Actions lists every action kind.
var Actions = []Action{ActionInbound, ActionOutbound, ActionCreated, ActionModified, ActionDeleted}

// Valid reports whether a is one of the known action kinds.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// IsStockMovement reports whether a moves stock in or out.
func (a Action) IsStockMovement() bool {
	return a == ActionInbound || a == ActionOutbound
}

// LogEntry is an immutable record of one change to the catalog. SKU, Name and
// Quantity are a snapshot of the item at the time of the action.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
	Action    Action `json:"action"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// DefaultActor is recorded on every log entry; there are no user accounts.
const DefaultActor = "Admin"

// TimestampLayout is the format of LogEntry.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

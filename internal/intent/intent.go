// Package intent translates inbound client messages into operations on the
// shared state. Intents arrive from untrusted, possibly-stale remote
// clients: malformed or unknown ones are logged and dropped, never raised.
package intent

import (
	"github.com/orbitdeck/orbitdeck/internal/magnet"
	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// Action names a client-requested operation.
type Action string

const (
	ActionSelectItem        Action = "select_item"
	ActionDeselectItem      Action = "deselect_item"
	ActionToggleItem        Action = "toggle_item_selection"
	ActionSetSelected       Action = "set_selected_items"
	ActionAddSelected       Action = "add_selected_items"
	ActionRemoveSelected    Action = "remove_selected_items"
	ActionSetHighlighted    Action = "set_highlighted_items"
	ActionAddHighlighted    Action = "add_highlighted_items"
	ActionRemoveHighlighted Action = "remove_highlighted_items"
	ActionSetMultiSelect    Action = "set_multi_select"
	ActionCreateMagnet      Action = "create_magnet"
	ActionUpdateMagnet      Action = "update_magnet"
	ActionDeleteMagnet      Action = "delete_magnet"
	ActionPushMagnet        Action = "push_magnet"
	ActionMoveMagnet        Action = "move_magnet"
	ActionMoveSelection     Action = "move_selection"
	ActionMoveHighlight     Action = "move_highlight"
	ActionSetParam          Action = "set_param"
)

// Intent is one decoded client request. Only the fields the action needs are
// expected to be populated; everything else is ignored.
type Intent struct {
	ClientID   string
	ClientName string
	Action     Action

	ItemID  string
	ItemIDs []string

	Direction    string
	DragX, DragY float64

	MagnetID string
	Create   *magnet.CreateParams
	Update   *magnet.Update
	Delta    *vec.V3
	Position *vec.V3

	Enabled *bool

	Param string
	Value *float64
}

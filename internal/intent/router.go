package intent

import (
	"log/slog"

	"github.com/orbitdeck/orbitdeck/internal/magnet"
	"github.com/orbitdeck/orbitdeck/internal/metrics"
	"github.com/orbitdeck/orbitdeck/internal/nav"
	"github.com/orbitdeck/orbitdeck/internal/params"
	"github.com/orbitdeck/orbitdeck/internal/selection"
)

// NavMode selects which directional-navigation variant movement intents use.
type NavMode string

const (
	NavModeFree NavMode = "free"
	NavModeGrid NavMode = "grid"
)

// ParseNavMode validates a navigation mode string.
func ParseNavMode(s string) (NavMode, bool) {
	switch NavMode(s) {
	case NavModeFree, NavModeGrid:
		return NavMode(s), true
	}
	return "", false
}

// Router validates decoded intents and applies them to the shared state. It
// runs on the simulation goroutine. A bad intent is never an error for the
// caller: it is logged, counted, and dropped, because a remote client acting
// on a stale view is normal operation, not a fault.
type Router struct {
	sel     *selection.State
	magnets *magnet.Registry
	nav     *nav.Navigator
	params  *params.Set
	logger  *slog.Logger
	metrics *metrics.Metrics

	mode NavMode
}

// NewRouter creates a router over the given state components.
func NewRouter(sel *selection.State, magnets *magnet.Registry, navigator *nav.Navigator, ps *params.Set, mode NavMode, m *metrics.Metrics, logger *slog.Logger) *Router {
	if mode == "" {
		mode = NavModeFree
	}
	return &Router{
		sel:     sel,
		magnets: magnets,
		nav:     navigator,
		params:  ps,
		logger:  logger,
		metrics: m,
		mode:    mode,
	}
}

// NavMode returns the active navigation mode.
func (r *Router) NavMode() NavMode { return r.mode }

// SetNavMode switches the navigation variant used by movement intents.
func (r *Router) SetNavMode(mode NavMode) {
	if mode == NavModeFree || mode == NavModeGrid {
		r.mode = mode
	}
}

// Route applies one intent. Malformed or unknown intents are dropped.
func (r *Router) Route(in Intent) {
	switch in.Action {
	case ActionSelectItem:
		if in.ItemID == "" {
			r.drop(in, "missing_item_id")
			return
		}
		r.sel.SelectItem(in.ClientID, in.ClientName, in.ItemID)

	case ActionDeselectItem:
		if in.ItemID == "" {
			r.drop(in, "missing_item_id")
			return
		}
		r.sel.DeselectItem(in.ClientID, in.ClientName, in.ItemID)

	case ActionToggleItem:
		if in.ItemID == "" {
			r.drop(in, "missing_item_id")
			return
		}
		r.sel.ToggleItemSelection(in.ClientID, in.ClientName, in.ItemID)

	case ActionSetSelected:
		// An empty list is a valid "clear the selection."
		r.sel.SetSelectedItems(in.ClientID, in.ClientName, in.ItemIDs)

	case ActionAddSelected:
		if len(in.ItemIDs) == 0 {
			r.drop(in, "missing_item_ids")
			return
		}
		r.sel.AddSelectedItems(in.ClientID, in.ClientName, in.ItemIDs)

	case ActionRemoveSelected:
		if len(in.ItemIDs) == 0 {
			r.drop(in, "missing_item_ids")
			return
		}
		r.sel.RemoveSelectedItems(in.ClientID, in.ClientName, in.ItemIDs)

	case ActionSetHighlighted:
		r.sel.SetHighlightedItems(in.ClientID, in.ClientName, in.ItemIDs)

	case ActionAddHighlighted:
		if len(in.ItemIDs) == 0 {
			r.drop(in, "missing_item_ids")
			return
		}
		r.sel.AddHighlightedItems(in.ClientID, in.ClientName, in.ItemIDs)

	case ActionRemoveHighlighted:
		if len(in.ItemIDs) == 0 {
			r.drop(in, "missing_item_ids")
			return
		}
		r.sel.RemoveHighlightedItems(in.ClientID, in.ClientName, in.ItemIDs)

	case ActionSetMultiSelect:
		if in.Enabled == nil {
			r.drop(in, "missing_enabled")
			return
		}
		r.sel.SetMultiSelect(in.ClientID, in.ClientName, *in.Enabled)

	case ActionCreateMagnet:
		if in.Create == nil {
			r.drop(in, "missing_magnet_params")
			return
		}
		if _, err := r.magnets.Create(in.ClientID, in.ClientName, *in.Create); err != nil {
			r.dropErr(in, "magnet_rejected", err)
			return
		}

	case ActionUpdateMagnet:
		if in.MagnetID == "" || in.Update == nil {
			r.drop(in, "missing_magnet_params")
			return
		}
		if err := r.magnets.Apply(in.ClientID, in.ClientName, in.MagnetID, *in.Update); err != nil {
			r.dropErr(in, "magnet_rejected", err)
			return
		}

	case ActionDeleteMagnet:
		if in.MagnetID == "" {
			r.drop(in, "missing_magnet_id")
			return
		}
		if err := r.magnets.Delete(in.ClientID, in.ClientName, in.MagnetID); err != nil {
			r.dropErr(in, "magnet_rejected", err)
			return
		}

	case ActionPushMagnet:
		if in.MagnetID == "" || in.Delta == nil {
			r.drop(in, "missing_magnet_params")
			return
		}
		if err := r.magnets.Push(in.ClientID, in.ClientName, in.MagnetID, *in.Delta); err != nil {
			r.dropErr(in, "magnet_rejected", err)
			return
		}

	case ActionMoveMagnet:
		if in.MagnetID == "" || in.Position == nil {
			r.drop(in, "missing_magnet_params")
			return
		}
		if err := r.magnets.Teleport(in.ClientID, in.ClientName, in.MagnetID, *in.Position); err != nil {
			r.dropErr(in, "magnet_rejected", err)
			return
		}

	case ActionMoveSelection:
		current := first(r.sel.SelectedIDs())
		if current == "" {
			r.drop(in, "no_focus")
			return
		}
		next, ok := r.navigate(current, in)
		if !ok {
			return
		}
		if next != "" {
			r.sel.SelectItem(in.ClientID, in.ClientName, next)
		}

	case ActionMoveHighlight:
		current := first(r.sel.HighlightedIDs())
		if current == "" {
			current = first(r.sel.SelectedIDs())
		}
		if current == "" {
			r.drop(in, "no_focus")
			return
		}
		next, ok := r.navigate(current, in)
		if !ok {
			return
		}
		if next != "" {
			r.sel.SetHighlightedItems(in.ClientID, in.ClientName, []string{next})
		}

	case ActionSetParam:
		if in.Param == "" || in.Value == nil {
			r.drop(in, "missing_param")
			return
		}
		if err := r.params.Apply(in.Param, *in.Value); err != nil {
			r.dropErr(in, "param_rejected", err)
			return
		}

	default:
		r.drop(in, "unknown_action")
		return
	}

	r.metrics.IntentsRouted.WithLabelValues(string(in.Action)).Inc()
}

// navigate resolves a movement intent to a destination item ID. A failed
// direction parse counts as a drop; an empty destination means "stay put" and
// is still a successfully routed intent.
func (r *Router) navigate(current string, in Intent) (string, bool) {
	dir, ok := nav.ParseDirection(in.Direction)
	if !ok {
		r.drop(in, "invalid_direction")
		return "", false
	}
	if r.mode == NavModeGrid {
		return r.nav.NextGrid(current, dir), true
	}
	return r.nav.NextFreeForm(current, dir, in.DragX, in.DragY), true
}

func (r *Router) drop(in Intent, reason string) {
	r.metrics.IntentsDropped.WithLabelValues(reason).Inc()
	r.logger.Warn("intent dropped",
		"action", in.Action,
		"reason", reason,
		"client_id", in.ClientID,
		"client_name", in.ClientName)
}

func (r *Router) dropErr(in Intent, reason string, err error) {
	r.metrics.IntentsDropped.WithLabelValues(reason).Inc()
	r.logger.Warn("intent dropped",
		"action", in.Action,
		"reason", reason,
		"error", err,
		"client_id", in.ClientID,
		"client_name", in.ClientName)
}

func first(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

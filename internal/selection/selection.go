// Package selection holds the authoritative shared record of which items are
// selected and highlighted. All mutation happens through the intent router on
// the simulation goroutine; there is no internal locking.
package selection

import (
	"log/slog"
)

// State is the shared selection/highlight record.
//
// selected is an ordered list of unique item IDs, most recent first.
// highlighted is a multiset: the same ID may appear once per remote client
// currently pointing at it.
type State struct {
	logger *slog.Logger

	multiSelect bool
	selected    []string
	highlighted []string

	selectionChanged bool
	highlightChanged bool
}

// New creates an empty selection state.
func New(logger *slog.Logger) *State {
	return &State{logger: logger}
}

// MultiSelect reports whether multi-select mode is enabled.
func (s *State) MultiSelect() bool { return s.multiSelect }

// SetMultiSelect switches between single- and multi-select mode. Dropping to
// single-select with more than one item selected keeps only the most recent
// entry.
func (s *State) SetMultiSelect(clientID, clientName string, enabled bool) {
	if s.multiSelect == enabled {
		return
	}
	s.multiSelect = enabled
	s.logger.Debug("multi-select mode changed", "enabled", enabled, "client_id", clientID, "client_name", clientName)

	if !enabled && len(s.selected) > 1 {
		s.setSelected(s.selected[:1])
		s.setHighlighted([]string{s.selected[0]})
	}
}

// SelectedIDs returns a copy of the selected ID list, most recent first.
func (s *State) SelectedIDs() []string {
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

// HighlightedIDs returns a copy of the highlight multiset.
func (s *State) HighlightedIDs() []string {
	out := make([]string, len(s.highlighted))
	copy(out, s.highlighted)
	return out
}

// IsSelected reports whether itemID is currently selected.
func (s *State) IsSelected(itemID string) bool {
	return indexOf(s.selected, itemID) >= 0
}

// GetHighlightCount returns how many remote highlighters currently point at
// itemID. Renderers use this to show "N people are pointing at this."
func (s *State) GetHighlightCount(itemID string) int {
	n := 0
	for _, id := range s.highlighted {
		if id == itemID {
			n++
		}
	}
	return n
}

// SelectItem selects itemID. In single-select mode it replaces the current
// selection; in multi-select mode it is added if not already present. The
// item always becomes the sole highlight. Empty IDs are ignored.
func (s *State) SelectItem(clientID, clientName, itemID string) {
	if itemID == "" {
		return
	}

	if s.multiSelect {
		if indexOf(s.selected, itemID) < 0 {
			s.setSelected(prepend(s.selected, itemID))
		}
	} else {
		s.setSelected([]string{itemID})
	}
	s.setHighlighted([]string{itemID})

	s.logger.Debug("select item", "item_id", itemID, "client_id", clientID, "client_name", clientName)
}

// DeselectItem removes itemID from the selection and releases one highlight
// occurrence. If any selection remains, the most recent entry becomes the
// highlight; otherwise nothing is highlighted.
func (s *State) DeselectItem(clientID, clientName, itemID string) {
	if itemID == "" {
		return
	}

	if i := indexOf(s.selected, itemID); i >= 0 {
		s.setSelected(removeAt(s.selected, i))
	}
	s.setHighlighted(removeOne(s.highlighted, itemID))

	if len(s.selected) > 0 {
		s.setHighlighted([]string{s.selected[0]})
	} else {
		s.setHighlighted(nil)
	}

	s.logger.Debug("deselect item", "item_id", itemID, "client_id", clientID, "client_name", clientName)
}

// ToggleItemSelection deselects itemID when selected, selects it otherwise.
func (s *State) ToggleItemSelection(clientID, clientName, itemID string) {
	if itemID == "" {
		return
	}
	if indexOf(s.selected, itemID) >= 0 {
		s.DeselectItem(clientID, clientName, itemID)
	} else {
		s.SelectItem(clientID, clientName, itemID)
	}
}

// SetSelectedItems replaces the selection wholesale. In single-select mode
// with more than one ID, only the last element of the input is kept — this
// mirrors the "the last ID wins" behavior of bulk adds and is deliberate.
// The highlight becomes the first surviving ID, or nothing.
func (s *State) SetSelectedItems(clientID, clientName string, itemIDs []string) {
	ids := dedupe(itemIDs)
	if !s.multiSelect && len(ids) > 1 {
		ids = ids[len(ids)-1:]
	}

	s.setSelected(ids)
	if len(s.selected) > 0 {
		s.setHighlighted([]string{s.selected[0]})
	} else {
		s.setHighlighted(nil)
	}

	s.logger.Debug("set selected items", "count", len(ids), "client_id", clientID, "client_name", clientName)
}

// AddSelectedItems adds each ID not already selected. In single-select mode
// it degrades to SelectItem on the last ID of the list.
func (s *State) AddSelectedItems(clientID, clientName string, itemIDs []string) {
	if len(itemIDs) == 0 {
		return
	}

	if !s.multiSelect {
		s.SelectItem(clientID, clientName, itemIDs[len(itemIDs)-1])
		return
	}

	next := s.selected
	added := ""
	for _, id := range itemIDs {
		if id == "" || indexOf(next, id) >= 0 {
			continue
		}
		next = prepend(next, id)
		added = id
	}
	if added == "" {
		return
	}

	s.setSelected(next)
	s.setHighlighted([]string{added})

	s.logger.Debug("add selected items", "count", len(itemIDs), "client_id", clientID, "client_name", clientName)
}

// RemoveSelectedItems removes each given ID from the selection and one
// highlight occurrence apiece, then re-derives the highlight from whatever
// selection remains.
func (s *State) RemoveSelectedItems(clientID, clientName string, itemIDs []string) {
	if len(itemIDs) == 0 {
		return
	}

	next := s.selected
	hl := s.highlighted
	for _, id := range itemIDs {
		if i := indexOf(next, id); i >= 0 {
			next = removeAt(next, i)
		}
		hl = removeOne(hl, id)
	}
	s.setSelected(next)
	s.setHighlighted(hl)

	if len(s.selected) > 0 {
		s.setHighlighted([]string{s.selected[0]})
	} else {
		s.setHighlighted(nil)
	}

	s.logger.Debug("remove selected items", "count", len(itemIDs), "client_id", clientID, "client_name", clientName)
}

// SetHighlightedItems replaces the highlight multiset wholesale.
func (s *State) SetHighlightedItems(clientID, clientName string, itemIDs []string) {
	ids := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	s.setHighlighted(ids)
	s.logger.Debug("set highlighted items", "count", len(ids), "client_id", clientID, "client_name", clientName)
}

// AddHighlightedItems adds one highlight occurrence per given ID. Duplicates
// are permitted: each represents a distinct remote highlighter.
func (s *State) AddHighlightedItems(clientID, clientName string, itemIDs []string) {
	next := make([]string, len(s.highlighted), len(s.highlighted)+len(itemIDs))
	copy(next, s.highlighted)
	for _, id := range itemIDs {
		if id != "" {
			next = append(next, id)
		}
	}
	s.setHighlighted(next)
	s.logger.Debug("add highlighted items", "count", len(itemIDs), "client_id", clientID, "client_name", clientName)
}

// RemoveHighlightedItems deletes one occurrence per matching ID, not all —
// releasing one remote highlighter must not disturb others pointing at the
// same item.
func (s *State) RemoveHighlightedItems(clientID, clientName string, itemIDs []string) {
	next := s.highlighted
	for _, id := range itemIDs {
		next = removeOne(next, id)
	}
	s.setHighlighted(next)
	s.logger.Debug("remove highlighted items", "count", len(itemIDs), "client_id", clientID, "client_name", clientName)
}

// ConsumeChanged returns the pending change flags and clears them. Called by
// the broadcaster once per tick.
func (s *State) ConsumeChanged() (selectionChanged, highlightChanged bool) {
	selectionChanged, highlightChanged = s.selectionChanged, s.highlightChanged
	s.selectionChanged, s.highlightChanged = false, false
	return selectionChanged, highlightChanged
}

// setSelected commits a candidate selection list. Set-equal candidates are
// skipped so interchangeable writes from many clients in the same tick window
// do not produce redundant broadcasts.
func (s *State) setSelected(candidate []string) {
	if sameSet(s.selected, candidate) {
		return
	}
	s.selected = candidate
	s.selectionChanged = true
}

// setHighlighted commits a candidate highlight multiset. Candidates with
// identical occurrence counts are skipped.
func (s *State) setHighlighted(candidate []string) {
	if sameMultiset(s.highlighted, candidate) {
		return
	}
	s.highlighted = candidate
	s.highlightChanged = true
}

// --- helpers ---

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func prepend(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, id)
	return append(out, ids...)
}

func removeAt(ids []string, i int) []string {
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

// removeOne deletes the first occurrence of id, leaving others intact.
func removeOne(ids []string, id string) []string {
	if i := indexOf(ids, id); i >= 0 {
		return removeAt(ids, i)
	}
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sameSet compares two ID lists ignoring order and duplicates.
func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, id := range a {
		as[id] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, id := range b {
		bs[id] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}

// sameMultiset compares two ID lists ignoring order but requiring matching
// duplicate counts.
func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

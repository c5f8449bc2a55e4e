package snapshots

import (
	"encoding/json"
	"sort"
)

// ResultSet maps player id to the raw upstream document.
// Count always equals len(Players) once the set has been saved or loaded.
type ResultSet struct {
	Players map[string]json.RawMessage `json:"players"`
	Date    string                     `json:"date"`
	Count   int                        `json:"count"`
}

// NewResultSet returns an empty, writable result set.
func NewResultSet() ResultSet {
	return ResultSet{Players: make(map[string]json.RawMessage)}
}

// Put inserts or overwrites the document for id.
func (rs *ResultSet) Put(id string, doc json.RawMessage) {
	if rs.Players == nil {
		rs.Players = make(map[string]json.RawMessage)
	}
	rs.Players[id] = doc
	rs.Count = len(rs.Players)
}

// Get returns the stored document for id.
func (rs ResultSet) Get(id string) (json.RawMessage, bool) {
	doc, ok := rs.Players[id]
	return doc, ok
}

func (rs ResultSet) Len() int {
	return len(rs.Players)
}

// Keys returns the player ids in ascending order.
func (rs ResultSet) Keys() []string {
	keys := make([]string, 0, len(rs.Players))
	for k := range rs.Players {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy whose map can be mutated independently.
func (rs ResultSet) Clone() ResultSet {
	out := ResultSet{Date: rs.Date, Players: make(map[string]json.RawMessage, len(rs.Players))}
	for k, v := range rs.Players {
		out.Players[k] = v
	}
	out.Count = len(out.Players)
	return out
}

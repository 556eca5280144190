package bestdori

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Millis is an epoch-milliseconds timestamp. The catalog encodes timestamps
// inconsistently as numbers, numeric strings, or null; anything unparseable
// decodes as not-OK rather than failing the whole catalog.
type Millis struct {
	Value int64
	OK    bool
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	m.Value = int64(f)
	m.OK = true
	return nil
}

// EventInfo describes one catalog event. StartAt/EndAt are indexed by game
// server (0 = JP, 1 = EN, ...).
type EventInfo struct {
	EventName []*string `json:"eventName"`
	StartAt   []Millis  `json:"startAt"`
	EndAt     []Millis  `json:"endAt"`
}

// Name returns the event's first localized name, or "Unknown"
func (e *EventInfo) Name() string {
	for _, n := range e.EventName {
		if n != nil {
			return *n
		}
	}
	return "Unknown"
}

// Window returns the event's start/end millis for one server; ok is false
// when either side is missing or malformed for that server
func (e *EventInfo) Window(server int) (start, end int64, ok bool) {
	if server < 0 || server >= len(e.StartAt) || server >= len(e.EndAt) {
		return 0, 0, false
	}
	if !e.StartAt[server].OK || !e.EndAt[server].OK {
		return 0, 0, false
	}
	return e.StartAt[server].Value, e.EndAt[server].Value, true
}

// Catalog is the event catalog, keyed by numeric event id. Iteration order
// follows the order the entries appeared in the JSON document so that event
// resolution is deterministic.
type Catalog struct {
	ids    []int
	events map[int]*EventInfo
}

// IDs returns the event ids in catalog (insertion) order
func (c *Catalog) IDs() []int {
	return c.ids
}

// Get returns the info for one event id
func (c *Catalog) Get(id int) (*EventInfo, bool) {
	info, ok := c.events[id]
	return info, ok
}

// Len returns the number of catalog entries
func (c *Catalog) Len() int {
	return len(c.ids)
}

// UnmarshalJSON decodes the catalog object token-by-token to preserve key
// order; entries with non-numeric keys or malformed bodies are skipped.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("catalog is not a JSON object")
	}

	c.ids = nil
	c.events = make(map[int]*EventInfo)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read catalog key: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to read catalog entry %q: %w", key, err)
		}

		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		info := &EventInfo{}
		if err := json.Unmarshal(raw, info); err != nil {
			continue
		}
		c.ids = append(c.ids, id)
		c.events[id] = info
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read catalog end: %w", err)
	}
	return nil
}

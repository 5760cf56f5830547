package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Counts is an insertion-ordered tag→count mapping. Counts are append-only
// history: they are incremented when a tag is chosen and never decremented,
// even when rows are deleted. JSON round-trips preserve key order so that
// frequency tie-breaks stay stable across sessions.
type Counts struct {
	counts map[string]int
	order  []string
}

// NewCounts creates an empty counts table.
func NewCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

// Inc increments the count for key, creating it lazily.
func (c *Counts) Inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Get returns the count for key, zero when absent.
func (c *Counts) Get(key string) int {
	return c.counts[key]
}

// Has reports whether key has ever been counted.
func (c *Counts) Has(key string) bool {
	_, ok := c.counts[key]
	return ok
}

// Keys returns the keys in insertion order.
func (c *Counts) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Len returns the number of distinct keys.
func (c *Counts) Len() int {
	return len(c.order)
}

// MarshalJSON writes the table as a JSON object in insertion order.
func (c *Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		fmt.Fprintf(&buf, ":%d", c.counts[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving its key order.
func (c *Counts) UnmarshalJSON(data []byte) error {
	c.counts = make(map[string]int)
	c.order = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("count for %q: %w", key, err)
		}
		if _, dup := c.counts[key]; !dup {
			c.order = append(c.order, key)
		}
		c.counts[key] = count
	}
	_, err = dec.Token() // closing brace
	return err
}

// VendorTable maps vendor names to their historical tag usage counts. A
// vendor appears only after at least one of its transactions was tagged; the
// table is a ranking signal for suggestions, never a constraint.
type VendorTable struct {
	vendors map[string]*Counts
	order   []string
}

// NewVendorTable creates an empty vendor association table.
func NewVendorTable() *VendorTable {
	return &VendorTable{vendors: make(map[string]*Counts)}
}

// Inc increments the (vendor, tag) association count.
func (v *VendorTable) Inc(vendor, tag string) {
	c, ok := v.vendors[vendor]
	if !ok {
		c = NewCounts()
		v.vendors[vendor] = c
		v.order = append(v.order, vendor)
	}
	c.Inc(tag)
}

// Known reports whether the vendor has ever been tagged.
func (v *VendorTable) Known(vendor string) bool {
	_, ok := v.vendors[vendor]
	return ok
}

// TagsFor returns the vendor's associated tags in insertion order, nil for
// unknown vendors.
func (v *VendorTable) TagsFor(vendor string) []string {
	c, ok := v.vendors[vendor]
	if !ok {
		return nil
	}
	return c.Keys()
}

// Vendors returns all known vendor names in insertion order.
func (v *VendorTable) Vendors() []string {
	vendors := make([]string, len(v.order))
	copy(vendors, v.order)
	return vendors
}

// Len returns the number of known vendors.
func (v *VendorTable) Len() int {
	return len(v.order)
}

// MarshalJSON writes the table as nested JSON objects in insertion order.
func (v *VendorTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, vendor := range v.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(vendor)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		inner, err := v.vendors[vendor].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads nested JSON objects, preserving key order at both
// levels.
func (v *VendorTable) UnmarshalJSON(data []byte) error {
	v.vendors = make(map[string]*Counts)
	v.order = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		vendor, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("tags for %q: %w", vendor, err)
		}
		counts := NewCounts()
		if err := counts.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("tags for %q: %w", vendor, err)
		}
		if _, dup := v.vendors[vendor]; !dup {
			v.order = append(v.order, vendor)
		}
		v.vendors[vendor] = counts
	}
	_, err = dec.Token()
	return err
}

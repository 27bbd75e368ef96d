package device

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Catalog is the ordered, immutable set of devices for one run.
type Catalog struct {
	devices []Descriptor
	byEUI   map[string]int
}

// catalogEntry mirrors one object in the devices JSON file. The platform
// exports numeric fields inconsistently (sometimes strings), so everything
// scalar is accepted as either form.
type catalogEntry struct {
	DeviceEUI     string          `json:"DeviceEUI"`
	Type          string          `json:"type"`
	DevName       string          `json:"DevName"`
	SiteName      string          `json:"SiteName"`
	Lat           json.RawMessage `json:"Lat"`
	Lon           json.RawMessage `json:"Lon"`
	EmptyDistance json.RawMessage `json:"EmptyDistance"`
}

// LoadCatalog reads the device catalog from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog JSON.
func ParseCatalog(data []byte) (*Catalog, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse device catalog: %w", err)
	}

	c := &Catalog{byEUI: make(map[string]int, len(entries))}
	for i, e := range entries {
		kind, err := ParseKind(e.Type)
		if err != nil {
			return nil, fmt.Errorf("device %q: %w", e.DeviceEUI, err)
		}

		lat, err := rawFloat(e.Lat)
		if err != nil {
			return nil, fmt.Errorf("device %q: Lat: %w", e.DeviceEUI, err)
		}
		lon, err := rawFloat(e.Lon)
		if err != nil {
			return nil, fmt.Errorf("device %q: Lon: %w", e.DeviceEUI, err)
		}

		d := Descriptor{
			EUI:       e.DeviceEUI,
			Kind:      kind,
			Name:      e.DevName,
			Site:      e.SiteName,
			Latitude:  lat,
			Longitude: lon,
		}

		if dist, ok, err := rawInt(e.EmptyDistance); err != nil {
			return nil, fmt.Errorf("device %q: EmptyDistance: %w", e.DeviceEUI, err)
		} else if ok {
			d.EmptyDistance = &dist
		}

		c.devices = append(c.devices, d)
		c.byEUI[d.EUI] = i
	}

	return c, nil
}

// Lookup returns the descriptor for an EUI.
func (c *Catalog) Lookup(eui string) (Descriptor, bool) {
	i, ok := c.byEUI[eui]
	if !ok {
		return Descriptor{}, false
	}
	return c.devices[i], true
}

// All returns all devices in catalog order.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.devices))
	copy(out, c.devices)
	return out
}

// ByKind returns the devices of one family, in catalog order.
func (c *Catalog) ByKind(kind Kind) []Descriptor {
	var out []Descriptor
	for _, d := range c.devices {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of devices in the catalog.
func (c *Catalog) Len() int { return len(c.devices) }

func rawFloat(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("missing value")
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// rawInt parses an optional integer that may be encoded as a number, a
// numeric string, an empty string, or be absent entirely.
func rawInt(raw json.RawMessage) (int, bool, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false, nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("invalid integer %q", s)
	}
	return v, true, nil
}

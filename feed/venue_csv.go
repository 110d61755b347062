package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Venue is one row of an uploaded venue CSV.
type Venue struct {
	Name     string
	Address  string
	City     string
	Website  string
	Capacity int
}

// ParseVenueCSV reads a venue upload. The first row must be a header; column
// order is free but "name" and "address" are required. Unknown columns are
// ignored so exports from other systems import without trimming.
func ParseVenueCSV(r io.Reader) ([]Venue, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "address"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var venues []Venue
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		v := Venue{
			Name:    field(record, cols, "name"),
			Address: field(record, cols, "address"),
			City:    field(record, cols, "city"),
			Website: field(record, cols, "website"),
		}
		if v.Name == "" {
			return nil, fmt.Errorf("line %d: empty name", line)
		}
		if v.Address == "" {
			return nil, fmt.Errorf("line %d: empty address", line)
		}

		if raw := field(record, cols, "capacity"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: bad capacity %q", line, raw)
			}
			v.Capacity = n
		}
		venues = append(venues, v)
	}
	return venues, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

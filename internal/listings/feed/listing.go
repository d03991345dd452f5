// Package feed loads the property feed and answers structured search
// queries with nearest-match ranking.
package feed

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// Listing is one property row from the feed.
type Listing struct {
	Address    string   `json:"address"`
	City       string   `json:"city,omitempty"`
	Beds       int      `json:"beds"`
	Baths      float64  `json:"baths"`
	Sqft       int      `json:"sqft"`
	Price      int      `json:"price"`
	Acres      float64  `json:"acres"`
	Status     string   `json:"status"`
	ImageURLs  []string `json:"image_urls,omitempty"`
	ListingURL string   `json:"listing_url,omitempty"`
}

// ParseCSV reads feed rows. The first row is a header; column names are
// matched case-insensitively and unknown columns are ignored. Rows without
// an address are skipped.
func ParseCSV(r io.Reader) ([]Listing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var out []Listing
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		address := get("address")
		if address == "" {
			continue
		}
		listing := Listing{
			Address:    address,
			City:       get("city"),
			Beds:       atoi(get("beds")),
			Baths:      atof(get("baths")),
			Sqft:       atoi(get("sqft")),
			Price:      atoi(get("price")),
			Acres:      atof(get("acres")),
			Status:     strings.ToLower(get("status")),
			ListingURL: get("listing_url"),
		}
		if raw := get("image_urls"); raw != "" {
			for _, u := range strings.Split(raw, "|") {
				if u = strings.TrimSpace(u); u != "" {
					listing.ImageURLs = append(listing.ImageURLs, u)
				}
			}
		}
		out = append(out, listing)
	}
	return out, nil
}

func atoi(s string) int {
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

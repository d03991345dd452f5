package feed

import (
	"math"
	"sort"
	"strings"
)

// DefaultLimit caps search results when the caller supplies no usable limit.
const DefaultLimit = 4

// Query holds the structured filters for a listing search. Nil numeric
// fields do not participate in scoring.
type Query struct {
	Beds       *int
	Baths      *float64
	SqftTarget *int
	PriceMin   *int
	PriceMax   *int
	AcreageMin *float64
	AcreageMax *float64
	Location   string
	Limit      int
}

// Deviation weights. Size-like dimensions are normalized by the requested
// value so one extra bedroom and a few hundred square feet compare fairly.
const (
	bedsWeight    = 1.2
	bathsWeight   = 1.1
	sqftWeight    = 5.0
	priceWeight   = 4.0
	acreageWeight = 3.0
)

func statusRank(status string) int {
	switch strings.ToLower(status) {
	case "active":
		return 0
	case "pending":
		return 1
	case "sold":
		return 2
	default:
		return 3
	}
}

func score(l Listing, q Query) float64 {
	var s float64
	if q.Beds != nil {
		s += math.Abs(float64(l.Beds-*q.Beds)) * bedsWeight
	}
	if q.Baths != nil {
		s += math.Abs(l.Baths-*q.Baths) * bathsWeight
	}
	if q.SqftTarget != nil && *q.SqftTarget > 0 {
		s += math.Abs(float64(l.Sqft-*q.SqftTarget)) * sqftWeight / float64(*q.SqftTarget)
	}
	if q.PriceMin != nil && *q.PriceMin > 0 && l.Price < *q.PriceMin {
		s += float64(*q.PriceMin-l.Price) * priceWeight / float64(*q.PriceMin)
	}
	if q.PriceMax != nil && *q.PriceMax > 0 && l.Price > *q.PriceMax {
		s += float64(l.Price-*q.PriceMax) * priceWeight / float64(*q.PriceMax)
	}
	if q.AcreageMin != nil && *q.AcreageMin > 0 && l.Acres < *q.AcreageMin {
		s += (*q.AcreageMin - l.Acres) * acreageWeight / *q.AcreageMin
	}
	if q.AcreageMax != nil && *q.AcreageMax > 0 && l.Acres > *q.AcreageMax {
		s += (l.Acres - *q.AcreageMax) * acreageWeight / *q.AcreageMax
	}
	return s
}

// Search ranks listings by weighted deviation from the query, tie-broken by
// status rank (active first) and then descending price. Location is a
// substring filter on address and city, not a scored dimension.
func Search(items []Listing, q Query) []Listing {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var candidates []Listing
	location := strings.ToLower(strings.TrimSpace(q.Location))
	for _, l := range items {
		if location != "" &&
			!strings.Contains(strings.ToLower(l.Address), location) &&
			!strings.Contains(strings.ToLower(l.City), location) {
			continue
		}
		candidates = append(candidates, l)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := score(candidates[i], q), score(candidates[j], q)
		if si != sj {
			return si < sj
		}
		ri, rj := statusRank(candidates[i].Status), statusRank(candidates[j].Status)
		if ri != rj {
			return ri < rj
		}
		return candidates[i].Price > candidates[j].Price
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

package usecase

import "github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"

type AirlinesDetails struct {
	Airlines     []string
	ExtendedData []entity.AirlineProvider
}

// airlineDirectory reduces every carrier of its, owners and marketing
// carriers alike, to one entry per code in first-seen order.
func airlineDirectory(its []entity.Itinerary) AirlinesDetails {
	var b directoryBuilder
	for _, it := range its {
		for _, o := range it.Offers {
			b.add(o.Owner)
			for _, s := range o.Segments() {
				b.add(s.MarketingCarrier)
			}
		}
	}
	return b.details()
}

// mergeAirlines joins directories keeping the first entry of every code.
func mergeAirlines(dirs ...AirlinesDetails) AirlinesDetails {
	var b directoryBuilder
	for _, d := range dirs {
		for _, p := range d.ExtendedData {
			b.add(entity.Carrier{IATACode: p.Code, Name: p.DisplayName, LogoURL: p.Logo})
		}
	}
	return b.details()
}

type directoryBuilder struct {
	seen    map[string]int
	entries []entity.AirlineProvider
}

func (b *directoryBuilder) add(c entity.Carrier) {
	if c.IATACode == "" {
		return
	}
	if b.seen == nil {
		b.seen = map[string]int{}
	}
	if i, ok := b.seen[c.IATACode]; ok {
		// Later sightings only fill in what the first one lacked.
		if b.entries[i].DisplayName == c.IATACode && c.Name != "" {
			b.entries[i].DisplayName = c.Name
		}
		if b.entries[i].Logo == "" {
			b.entries[i].Logo = c.LogoURL
		}
		return
	}
	name := c.Name
	if name == "" {
		name = c.IATACode
	}
	b.seen[c.IATACode] = len(b.entries)
	b.entries = append(b.entries, entity.AirlineProvider{Code: c.IATACode, DisplayName: name, Logo: c.LogoURL})
}

func (b *directoryBuilder) details() AirlinesDetails {
	d := AirlinesDetails{
		Airlines:     make([]string, 0, len(b.entries)),
		ExtendedData: make([]entity.AirlineProvider, 0, len(b.entries)),
	}
	for _, e := range b.entries {
		d.Airlines = append(d.Airlines, e.Code)
		d.ExtendedData = append(d.ExtendedData, e)
	}
	return d
}

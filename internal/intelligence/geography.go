package intelligence

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/salonpulse-ai/salonpulse-backend/internal/reports"
)

const topCitiesPerCountry = 5

type cityAcc struct {
	salons   map[string]struct{}
	services float64
}

type countryAcc struct {
	salons   map[string]struct{}
	services float64
	cost     decimal.Decimal
	cities   map[string]*cityAcc
}

// geographyReducer rolls rows up per country with a per-city drilldown
// capped at the busiest cities.
type geographyReducer struct {
	byCountry map[string]*countryAcc
}

func newGeographyReducer() *geographyReducer {
	return &geographyReducer{byCountry: make(map[string]*countryAcc)}
}

func (r *geographyReducer) accumulate(row reports.UsageRow) {
	acc := r.byCountry[row.Country]
	if acc == nil {
		acc = &countryAcc{
			salons: make(map[string]struct{}),
			cities: make(map[string]*cityAcc),
		}
		r.byCountry[row.Country] = acc
	}
	acc.salons[row.UserID] = struct{}{}
	acc.services += row.TotalServices
	acc.cost = acc.cost.Add(decimal.NewFromFloat(row.TotalCost))

	city := acc.cities[row.City]
	if city == nil {
		city = &cityAcc{salons: make(map[string]struct{})}
		acc.cities[row.City] = city
	}
	city.salons[row.UserID] = struct{}{}
	city.services += row.TotalServices
}

func (r *geographyReducer) finalize() []GeographicDistribution {
	countries := make([]string, 0, len(r.byCountry))
	for country := range r.byCountry {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	out := make([]GeographicDistribution, 0, len(countries))
	for _, country := range countries {
		acc := r.byCountry[country]
		out = append(out, GeographicDistribution{
			Country:       country,
			Salons:        len(acc.salons),
			TotalServices: acc.services,
			TotalCost:     round2(acc.cost),
			TopCities:     topCities(acc.cities),
		})
	}
	return out
}

func topCities(cities map[string]*cityAcc) []CityDistribution {
	all := make([]CityDistribution, 0, len(cities))
	for name, acc := range cities {
		all = append(all, CityDistribution{
			City:          name,
			Salons:        len(acc.salons),
			TotalServices: acc.services,
		})
	}
	// Busiest first; ties break on name so output is stable.
	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalServices != all[j].TotalServices {
			return all[i].TotalServices > all[j].TotalServices
		}
		return all[i].City < all[j].City
	})
	if len(all) > topCitiesPerCountry {
		all = all[:topCitiesPerCountry]
	}
	return all
}

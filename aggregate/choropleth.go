package aggregate

import (
	"math"
	"sort"

	"github.com/TFMV/refugeeflow/models"
)

// Colour scale bounds of the choropleth, in log10 of the refugee count
const (
	ZMin = 0.0
	ZMax = 6.6
)

// MapPoint is one shaded country of the choropleth
type MapPoint struct {
	Location models.CountryCode `json:"location"`
	Code     string             `json:"code"`
	Value    float64            `json:"value"`
	Log10    float64            `json:"log10"`
}

// Choropleth sums the per-destination table by ISO code for one year. Rows
// without a code or a usable count are skipped, as are codes whose total is
// not positive. Points are sorted by code.
func Choropleth(records []models.FlowRecord, year int) []MapPoint {
	if !models.ValidYear(year) {
		return []MapPoint{}
	}

	byCode := make(map[string]*MapPoint)
	for _, r := range records {
		if r.Year != year || r.Code == "" || !r.HasCount() {
			continue
		}
		p, ok := byCode[r.Code]
		if !ok {
			p = &MapPoint{Location: r.Destination, Code: r.Code}
			byCode[r.Code] = p
		}
		p.Value += r.Count
	}

	points := make([]MapPoint, 0, len(byCode))
	for _, p := range byCode {
		if p.Value <= 0 {
			continue
		}
		p.Log10 = math.Log10(p.Value)
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Code < points[j].Code })
	return points
}

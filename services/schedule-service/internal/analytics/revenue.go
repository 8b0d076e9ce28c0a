// Package analytics aggregates completed visits into revenue reports.
// All computation is in memory over rows already scoped to one barber.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

// Range selects the reporting window for a revenue summary.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// ParseRange maps a query-string value to a Range. Unknown values
// fall back to the monthly window.
func ParseRange(s string) Range {
	switch Range(s) {
	case RangeWeek, RangeMonth, RangeYear, RangeAll:
		return Range(s)
	default:
		return RangeMonth
	}
}

// allTimeStart is far enough back to cover every recorded visit.
var allTimeStart = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// Window returns the [from, to] interval covered by r, ending at now.
func Window(r Range, now time.Time) (from, to time.Time) {
	to = now
	switch r {
	case RangeWeek:
		from = now.AddDate(0, 0, -7)
	case RangeYear:
		from = now.AddDate(-1, 0, 0)
	case RangeAll:
		from = allTimeStart
	default:
		from = now.AddDate(0, -1, 0)
	}
	return from, to
}

// ServiceRevenue is one row of the per-service breakdown.
type ServiceRevenue struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DataPoint is one step of a daily or monthly revenue series. Label is
// a date (2006-01-02) or a month (2006-01) depending on the series.
type DataPoint struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Summary is the full revenue report for one barber and window.
type Summary struct {
	TotalRevenue          float64          `json:"total_revenue"`
	AppointmentsCompleted int              `json:"appointments_completed"`
	AverageTicket         float64          `json:"average_ticket"`
	TopService            string           `json:"top_service"`
	ServiceBreakdown      []ServiceRevenue `json:"service_breakdown"`
	DailyRevenue          []DataPoint      `json:"daily_revenue"`
	MonthlyTrend          []DataPoint      `json:"monthly_trend"`
}

// Summarize aggregates completed visits into a Summary. The breakdown
// is sorted by revenue descending, the series ascending by label.
// Dates are truncated in UTC, matching the calendar grid.
func Summarize(visits []model.Visit) Summary {
	s := Summary{
		AppointmentsCompleted: len(visits),
		ServiceBreakdown:      []ServiceRevenue{},
		DailyRevenue:          []DataPoint{},
		MonthlyTrend:          []DataPoint{},
	}

	byService := map[string]*ServiceRevenue{}
	byDay := map[string]float64{}
	byMonth := map[string]float64{}

	for _, v := range visits {
		name := v.ServiceName
		if name == "" {
			name = "Unknown"
		}
		s.TotalRevenue += v.Price

		row, ok := byService[name]
		if !ok {
			row = &ServiceRevenue{Name: name}
			byService[name] = row
		}
		row.Count++
		row.Revenue += v.Price

		start := v.StartTime.UTC()
		byDay[start.Format("2006-01-02")] += v.Price
		byMonth[start.Format("2006-01")] += v.Price
	}

	if len(visits) > 0 {
		s.AverageTicket = math.Round(s.TotalRevenue/float64(len(visits))*100) / 100
	}

	for _, row := range byService {
		s.ServiceBreakdown = append(s.ServiceBreakdown, *row)
	}
	sort.Slice(s.ServiceBreakdown, func(i, j int) bool {
		a, b := s.ServiceBreakdown[i], s.ServiceBreakdown[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Name < b.Name
	})
	if len(s.ServiceBreakdown) > 0 {
		s.TopService = s.ServiceBreakdown[0].Name
	}

	s.DailyRevenue = seriesFrom(byDay)
	s.MonthlyTrend = seriesFrom(byMonth)
	return s
}

func seriesFrom(m map[string]float64) []DataPoint {
	points := make([]DataPoint, 0, len(m))
	for label, amount := range m {
		points = append(points, DataPoint{Label: label, Amount: amount})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })
	return points
}

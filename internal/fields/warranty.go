package fields

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/keapril/webinventory/internal/model"
)

// WarrantyStatus classifies how close an item is to the end of its warranty.
type WarrantyStatus string

// Warranty statuses.
const (
	WarrantyNormal       WarrantyStatus = "normal"
	WarrantyExpiringSoon WarrantyStatus = "expiring-soon"
	WarrantyExpired      WarrantyStatus = "expired"
)

// ExpiringWindowDays is the inclusive number of days before the end date
// during which a warranty counts as expiring soon.
const ExpiringWindowDays = 30

// DateLayout is the format of warranty dates.
const DateLayout = "2006-01-02"

// WarrantyInfo is the computed warranty state of one item.
type WarrantyInfo struct {
	Status  WarrantyStatus
	Tracked bool
	// Days is the signed number of calendar days from today to the end date.
	Days int
}

// Display returns the text shown next to the status: N/A when untracked,
// otherwise the magnitude of Days.
func (w WarrantyInfo) Display() string {
	if !w.Tracked {
		return "N/A"
	}
	d := w.Days
	if d < 0 {
		d = -d
	}
	return strconv.Itoa(d)
}

// Warranty computes the warranty state for an end date relative to now.
// Days are counted from local midnight today and rounded up, so an end date
// of today is 0 days and yesterday is -1.
func Warranty(end *string, now time.Time) WarrantyInfo {
	if end == nil || *end == "" {
		return WarrantyInfo{Status: WarrantyNormal}
	}
	endDate, err := time.Parse(DateLayout, *end)
	if err != nil {
		return WarrantyInfo{Status: WarrantyNormal}
	}

	// Both sides are pinned to UTC midnight so DST shifts in now's zone
	// cannot add or drop a day.
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(math.Ceil(endDate.Sub(today).Hours() / 24))

	info := WarrantyInfo{Tracked: true, Days: days}
	switch {
	case days < 0:
		info.Status = WarrantyExpired
	case days <= ExpiringWindowDays:
		info.Status = WarrantyExpiringSoon
	default:
		info.Status = WarrantyNormal
	}
	return info
}

// WarrantyAlert pairs an item with a warranty that needs attention.
type WarrantyAlert struct {
	Item     model.CatalogItem
	Warranty WarrantyInfo
}

// WarrantyAlerts returns the expired and expiring-soon items, soonest first.
func WarrantyAlerts(items []model.CatalogItem, now time.Time) []WarrantyAlert {
	var alerts []WarrantyAlert
	for _, item := range items {
		w := Warranty(item.WarrantyEnd, now)
		if w.Status == WarrantyExpired || w.Status == WarrantyExpiringSoon {
			alerts = append(alerts, WarrantyAlert{Item: item, Warranty: w})
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Warranty.Days < alerts[j].Warranty.Days
	})
	return alerts
}

package model

// Locations are the sites an item can be stored at. The first entry is the
// default for new items.
var Locations = []string{"北辦", "中辦", "南辦", "醫院", "客戶端"}

// DefaultLocation returns the location preselected for new items.
func DefaultLocation() string {
	return Locations[0]
}

// ValidLocation reports whether loc is one of the known sites.
func ValidLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

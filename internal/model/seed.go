package model

// SeedItems returns the catalog shown before anything is loaded from the
// remote store, and after a reset.
func SeedItems() []CatalogItem {
	start, end := "2023-01-15", "2025-01-14"
	return []CatalogItem{
		{
			SKU: "EQ-NC-001", Code: "EQ", Category: "NC", Number: "001",
			Name:           "高精度示波器",
			ImageReference: "https://images.unsplash.com/photo-1599468652316-24c615886618?w=400",
			Stock:          5,
			Location:       "北辦",
			SerialNumber:   "SN-A123",
			WarrantyStart:  &start,
			WarrantyEnd:    &end,
			Accessories:    []Accessory{{Name: "電源線", Quantity: 1}, {Name: "探頭", Quantity: 2}},
		},
		{
			SKU: "CS-PP-002", Code: "CS", Category: "PP", Number: "002",
			Name:           "5ml 移液管",
			ImageReference: "https://images.unsplash.com/photo-1633638423438-2ab37c1d41ac?w=400",
			Stock:          200,
			Location:       "中辦",
		},
	}
}

// SeedLogs returns the log shown alongside SeedItems.
func SeedLogs() []LogEntry {
	return []LogEntry{
		{
			Timestamp: "2024-07-20 10:05:32",
			Actor:     DefaultActor,
			Action:    ActionInbound,
			SKU:       "EQ-NC-001",
			Name:      "高精度示波器",
			Quantity:  2,
			Note:      "系統初始化",
		},
	}
}

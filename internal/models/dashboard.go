package models

// CategoryCount is a per-category aggregate
type CategoryCount struct {
	Category  string  `json:"category"`
	Count     int64   `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

// TagCount is a per-tag aggregate
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// PlaceStat groups stays that fall into the same map cell
type PlaceStat struct {
	CellToken     string  `json:"cellToken"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Visits        int     `json:"visits"`
	TotalDwellMs  int64   `json:"totalDwellMs"`
	LastVisitedAt int64   `json:"lastVisitedAt"`
}

// PersonalDashboard summarizes a single user's preferences
type PersonalDashboard struct {
	RecordCount   int64           `json:"recordCount"`
	AvgRating     float64         `json:"avgRating"`
	Categories    []CategoryCount `json:"categories"`
	TopTags       []TagCount      `json:"topTags"`
	StayCount     int64           `json:"stayCount"`
	TotalDwellMs  int64           `json:"totalDwellMs"`
	MedianDwellMs int64           `json:"medianDwellMs"`
	P90DwellMs    int64           `json:"p90DwellMs"`
	TopPlaces     []PlaceStat     `json:"topPlaces"`
	GuildCount    int64           `json:"guildCount"`
}

// AggregateDashboard summarizes preferences across all users
type AggregateDashboard struct {
	UserCount   int64           `json:"userCount"`
	RecordCount int64           `json:"recordCount"`
	Categories  []CategoryCount `json:"categories"`
	TopTags     []TagCount      `json:"topTags"`
}

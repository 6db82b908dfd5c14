package domain

// CategoryCount is the number of distinct influencers tagged with a category.
type CategoryCount struct {
	Name            string `json:"name"`
	InfluencerCount int64  `json:"influencer_count"`
}

// LocationCount is the number of distinct influencers at a location. City and
// State are derived from the "city, state" convention used by the dataset.
type LocationCount struct {
	Name            string `json:"name"`
	City            string `json:"city"`
	State           string `json:"state"`
	InfluencerCount int64  `json:"influencer_count"`
}

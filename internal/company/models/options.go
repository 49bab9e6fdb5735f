package models

// Options lists the categorical values clients offer in their selectors.
// The store does not enforce them.
type Options struct {
	Industries []string `json:"industries" yaml:"industries"`
	Locations  []string `json:"locations" yaml:"locations"`
	Sizes      []string `json:"sizes" yaml:"sizes"`
	Sorts      []string `json:"sorts" yaml:"sorts"`
}

// DefaultOptions returns the suggested values shown by the directory UI.
func DefaultOptions() Options {
	return Options{
		Industries: []string{
			"Technology", "Finance", "Healthcare", "Education",
			"Renewable Energy", "Logistics", "Design", "Automotive",
		},
		Locations: []string{
			"San Francisco, CA", "New York, NY", "Austin, TX", "Boston, MA",
			"Chicago, IL", "Miami, FL", "Portland, OR", "Detroit, MI",
		},
		Sizes: []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"},
		Sorts: []string{"name", "-name", "founded", "-founded", "-createdAt"},
	}
}

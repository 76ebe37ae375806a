package domain

import "strings"

// Restaurant is a catalogue entry loaded from the restaurants data file.
type Restaurant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Cuisine     string     `json:"cuisine,omitempty"`
	Type        string     `json:"type,omitempty"`
	Category    string     `json:"category,omitempty"`
	Price       int        `json:"price,omitempty"`
	Rating      int        `json:"rating,omitempty"`
	Location    string     `json:"location,omitempty"`
	Days        []int      `json:"days,omitempty"`
	Hours       string     `json:"hours,omitempty"`
	MenuItems   []MenuItem `json:"menuItems,omitempty"`
}

// CuisineKey returns the lower-cased cuisine, falling back to type and
// category for older data files.
func (r Restaurant) CuisineKey() string {
	for _, v := range []string{r.Cuisine, r.Type, r.Category} {
		if v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

// WithoutMenu returns a copy suitable for list responses.
func (r Restaurant) WithoutMenu() Restaurant {
	r.MenuItems = nil
	return r
}

type MenuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

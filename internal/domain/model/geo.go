package model

import "strings"

type Country struct {
	ID    int
	Title string
}

type City struct {
	ID     int
	Title  string
	Area   string
	Region string
}

// Label renders a city for selection lists, disambiguated by area and region
// when the directory provides them.
func (c City) Label() string {
	extra := make([]string, 0, 2)
	if c.Area != "" {
		extra = append(extra, c.Area)
	}
	if c.Region != "" {
		extra = append(extra, c.Region)
	}
	if len(extra) == 0 {
		return c.Title
	}
	return c.Title + " (" + strings.Join(extra, ", ") + ")"
}

// Package model defines shared data structures.
package model

// Dog represents one adoptable dog listing scraped from the shelter.
type Dog struct {
	ID       string // canonical listing URL, or the name when no URL exists
	Name     string
	Breed    string
	Sex      string
	Size     string
	URL      string
	ImageURL string
	AgeYears *float64 // nil when the age was absent or unparseable
}

// AgeKnown reports whether the listing carried a parseable age.
func (d Dog) AgeKnown() bool {
	return d.AgeYears != nil
}

// Payload is the webhook notification body for one dog. Every key is
// always present; age_years is 0 when the age is unknown.
type Payload struct {
	Name     string  `json:"name"`
	Breed    string  `json:"breed"`
	AgeYears float64 `json:"age_years"`
	Sex      string  `json:"sex"`
	Size     string  `json:"size"`
	URL      string  `json:"url"`
	ImageURL string  `json:"image_url"`
}

// Payload converts the dog into its webhook body.
func (d Dog) Payload() Payload {
	p := Payload{
		Name:     d.Name,
		Breed:    d.Breed,
		Sex:      d.Sex,
		Size:     d.Size,
		URL:      d.URL,
		ImageURL: d.ImageURL,
	}
	if d.AgeYears != nil {
		p.AgeYears = *d.AgeYears
	}
	return p
}

// SeenSet maps dog id to the last-known record for that id. Once an id
// enters the set it is never removed, even if the listing disappears
// from the shelter page.
type SeenSet map[string]Dog

// Contains reports whether the id has been seen before.
func (s SeenSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

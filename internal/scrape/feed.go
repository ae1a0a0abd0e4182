package scrape

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shelterwatch/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// FeedSource reads listings from an RSS or Atom feed, for shelters that
// publish their adoptable dogs as a feed instead of an HTML page.
type FeedSource struct {
	parser *gofeed.Parser
	url    string
}

// Ensure FeedSource implements Source.
var _ Source = (*FeedSource)(nil)

// NewFeedSource creates a source for the given feed URL.
func NewFeedSource(feedURL string) *FeedSource {
	return &FeedSource{parser: gofeed.NewParser(), url: feedURL}
}

// Fetch parses the feed and maps each item to a Dog. The item link is
// the dedup id, with the GUID as fallback; breed, age, sex and size are
// read from "Label: value" runs in the item description.
func (f *FeedSource) Fetch(ctx context.Context) ([]model.Dog, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	var dogs []model.Dog
	for _, item := range feed.Items {
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		name := strings.TrimSpace(item.Title)
		if name == "" && link == "" {
			continue
		}

		desc := descriptionText(item.Description)
		dog := model.Dog{
			Name:     name,
			Breed:    labelValue(desc, "breed"),
			Sex:      labelValue(desc, "sex", "gender"),
			Size:     labelValue(desc, "size"),
			URL:      link,
			AgeYears: ParseAge(labelValue(desc, "age")),
		}
		if item.Image != nil {
			dog.ImageURL = item.Image.URL
		}
		if dog.ImageURL == "" {
			for _, enc := range item.Enclosures {
				if strings.HasPrefix(enc.Type, "image/") {
					dog.ImageURL = enc.URL
					break
				}
			}
		}

		dog.ID = dog.URL
		if dog.ID == "" {
			dog.ID = dog.Name
		}
		dogs = append(dogs, dog)
	}

	log.Printf("Found %d dogs in feed %s", len(dogs), f.url)
	return dogs, nil
}

// descriptionText strips markup from a feed item description, keeping
// text nodes pipe-separated like cardText does for HTML cards.
func descriptionText(desc string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return desc
	}
	var parts []string
	for _, node := range doc.Selection.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, "|")
}

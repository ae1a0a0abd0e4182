// Package scrape turns a shelter's listing page into Dog records.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"shelterwatch/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// Source supplies the current listings for one scrape cycle.
type Source interface {
	Fetch(ctx context.Context) ([]model.Dog, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// Card patterns commonly used by shelter websites, most specific first.
var cardSelectors = []string{
	"[class*='animal-card']",
	"[class*='pet-card']",
	"[class*='dog-card']",
	"[class*='animal-list'] [class*='item']",
	"[class*='pet-list'] [class*='item']",
	"[class*='grid'] [class*='card']",
	"[class*='adoptable'] [class*='card']",
	"[class*='available'] [class*='card']",
	".dog-listing",
	".pet-listing",
	".animal-listing",
}

// Scraper fetches and parses the shelter's HTML listing page.
type Scraper struct {
	client *resty.Client
	url    string
}

// NewScraper creates a scraper for the given listing page URL.
func NewScraper(shelterURL string) *Scraper {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", userAgent)
	return &Scraper{client: client, url: shelterURL}
}

// Fetch downloads the listing page and parses every dog card on it.
// A card that cannot be parsed is skipped, never fatal.
func (s *Scraper) Fetch(ctx context.Context) ([]model.Dog, error) {
	res, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch %s: status %s", s.url, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	base, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parse shelter url: %w", err)
	}

	var dogs []model.Dog
	findCards(doc).Each(func(_ int, card *goquery.Selection) {
		dog, ok := parseCard(card, base)
		if !ok {
			return
		}
		dogs = append(dogs, dog)
	})

	log.Printf("Found %d dogs on %s", len(dogs), s.url)
	return dogs, nil
}

// findCards locates listing cards using the selector ladder, falling
// back to any div whose class looks like a card or listing item.
func findCards(doc *goquery.Document) *goquery.Selection {
	for _, sel := range cardSelectors {
		cards := doc.Find(sel)
		if cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class := strings.ToLower(s.AttrOr("class", ""))
		return strings.Contains(class, "card") ||
			strings.Contains(class, "item") ||
			strings.Contains(class, "listing")
	})
}

var nameClassRe = regexp.MustCompile(`(?i)name|title`)

// parseCard extracts one dog from a listing card. Cards without a name
// are not listings and are dropped.
func parseCard(card *goquery.Selection, base *url.URL) (model.Dog, bool) {
	name := ""
	card.Find("h2, h3, h4, a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if nameClassRe.MatchString(s.AttrOr("class", "")) {
			name = strings.TrimSpace(s.Text())
			return false
		}
		return true
	})
	if name == "" {
		name = strings.TrimSpace(card.Find("h2, h3, h4").First().Text())
	}
	if name == "" {
		return model.Dog{}, false
	}

	link := resolveURL(base, card.Find("a[href]").First().AttrOr("href", ""))

	img := card.Find("img").First()
	imgSrc := img.AttrOr("src", "")
	if imgSrc == "" {
		imgSrc = img.AttrOr("data-src", "")
	}

	text := cardText(card)
	dog := model.Dog{
		Name:     name,
		Breed:    extractField(card, text, "breed"),
		Sex:      extractField(card, text, "sex", "gender"),
		Size:     extractField(card, text, "size"),
		URL:      link,
		ImageURL: resolveURL(base, imgSrc),
	}
	dog.AgeYears = ParseAge(extractField(card, text, "age"))

	// The listing URL is the stable dedup key; fall back to the name
	// when the card has no link.
	dog.ID = dog.URL
	if dog.ID == "" {
		dog.ID = dog.Name
	}
	return dog, true
}

// extractField tries, in order: an element with a matching class, a
// dt/dd pair, and a "Label: value" run in the card text.
func extractField(card *goquery.Selection, text string, names ...string) string {
	for _, name := range names {
		classRe := regexp.MustCompile(`(?i)` + name)

		val := ""
		card.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if classRe.MatchString(s.AttrOr("class", "")) {
				val = strings.TrimSpace(s.Text())
				return false
			}
			return true
		})
		if val != "" {
			return stripLabel(val, name)
		}

		card.Find("dt").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if classRe.MatchString(s.Text()) {
				val = strings.TrimSpace(s.Next().Filter("dd").Text())
				return false
			}
			return true
		})
		if val != "" {
			return val
		}
	}
	return labelValue(text, names...)
}

// labelValue pulls the value following a "Label:" token out of
// flattened card text, stopping at the next text-node boundary.
func labelValue(text string, names ...string) string {
	for _, name := range names {
		re := regexp.MustCompile(`(?i)` + name + `\s*:`)
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		rest := strings.TrimLeft(text[loc[1]:], " |")
		if cut := strings.IndexAny(rest, "|\n"); cut >= 0 {
			rest = rest[:cut]
		}
		if v := strings.TrimSpace(rest); v != "" {
			return v
		}
	}
	return ""
}

// stripLabel removes a leading "Label:" from a value that came from an
// element containing both label and value text.
func stripLabel(val, name string) string {
	re := regexp.MustCompile(`(?i)^[^:]*` + name + `[^:]*:\s*`)
	return strings.TrimSpace(re.ReplaceAllString(val, ""))
}

// cardText flattens the card's text nodes, pipe-separated, so labels
// and values split across adjacent elements stay distinguishable.
func cardText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, "|")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// resolveURL resolves href against the listing page URL, so relative
// detail links become canonical absolute ids.
func resolveURL(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

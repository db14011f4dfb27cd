// Package extractor maps search result markup of each supported site to
// domain.ProductRecord values.
package extractor

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/shopscout/backend/internal/domain"
	"golang.org/x/net/html"
)

// DefaultMaxCards is how many cards are read from a single results page
const DefaultMaxCards = 40

var widthPercentRegex = regexp.MustCompile(`width:\s*(\d+(?:\.\d+)?)%`)

// cardFunc maps one card to a record; an invalid record is dropped by the caller
type cardFunc func(card *goquery.Selection) domain.ProductRecord

// extractCards parses body, visits at most maxCards matches of cardSel and keeps
// valid records. A panic anywhere in the page is logged and yields an empty list.
func extractCards(label string, body []byte, cardSel cascadia.Selector, maxCards int, mapCard cardFunc) (records []domain.ProductRecord) {
	records = []domain.ProductRecord{}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] Extraction error: %v", label, r)
			records = []domain.ProductRecord{}
		}
	}()

	doc, err := parseDocument(body)
	if err != nil {
		log.Printf("[%s] Failed to parse page: %v", label, err)
		return records
	}

	doc.FindMatcher(cardSel).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= maxCards {
			return false
		}
		if rec := mapCard(card); rec.Valid() {
			records = append(records, rec)
		}
		return true
	})

	return records
}

func parseDocument(body []byte) (*goquery.Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// firstText returns the trimmed text of the first match of sel inside card
func firstText(card *goquery.Selection, sel cascadia.Selector) string {
	return strings.TrimSpace(card.FindMatcher(sel).First().Text())
}

// firstAttr returns the trimmed value of attr on the first match of sel inside card
func firstAttr(card *goquery.Selection, sel cascadia.Selector, attr string) string {
	val, _ := card.FindMatcher(sel).First().Attr(attr)
	return strings.TrimSpace(val)
}

// imageURL prefers the lazy-load attribute over the eager src
func imageURL(card *goquery.Selection, sel cascadia.Selector, lazyAttr string) string {
	img := card.FindMatcher(sel).First()
	if img.Length() == 0 {
		return ""
	}
	if lazy := strings.TrimSpace(img.AttrOr(lazyAttr, "")); lazy != "" {
		return lazy
	}
	return strings.TrimSpace(img.AttrOr("src", ""))
}

// NormalizeLink turns a protocol-relative link into an https URL.
// Other links are returned unchanged apart from surrounding whitespace.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "//") {
		return "https:" + link
	}
	return link
}

// RatingFromStyle derives a 0-5 rating from a fill indicator such as
// "width: 80%". The percentage is divided by 20 and rounded to one decimal.
func RatingFromStyle(style string) domain.Rating {
	m := widthPercentRegex.FindStringSubmatch(style)
	if m == nil {
		return domain.NoRating
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return domain.NoRating
	}
	// pct/20 to one decimal == round(pct/2)/10, which stays exact for whole percentages
	return domain.NewRating(math.Round(pct/2) / 10)
}

// plusEscape encodes a free-text query with spaces as "+"
func plusEscape(query string) string {
	return url.QueryEscape(strings.TrimSpace(query))
}

// percentEscape encodes a free-text query with spaces as "%20".
// A literal "+" is already "%2B" after QueryEscape, so only spaces are affected.
func percentEscape(query string) string {
	return strings.ReplaceAll(plusEscape(query), "+", "%20")
}

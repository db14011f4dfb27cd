package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/shopscout/backend/internal/domain"
)

// SnapdealBaseURL is the production origin of Snapdeal
const SnapdealBaseURL = "https://www.snapdeal.com"

// Snapdeal card markup
var (
	snapdealCard   = cascadia.MustCompile("div.product-tuple-listing")
	snapdealTitle  = cascadia.MustCompile("p.product-title")
	snapdealPrice  = cascadia.MustCompile("span.lfloat.product-price")
	snapdealLink   = cascadia.MustCompile("a.dp-widget-link[href]")
	snapdealRating = cascadia.MustCompile("div.filled-stars[style]")
	snapdealImage  = cascadia.MustCompile("img.product-image")
)

// Snapdeal searches snapdeal.com and reads its product tuples
type Snapdeal struct {
	baseURL  string
	maxCards int
}

// NewSnapdeal creates the Snapdeal source. Empty or non-positive arguments fall back to defaults.
func NewSnapdeal(baseURL string, maxCards int) *Snapdeal {
	if baseURL == "" {
		baseURL = SnapdealBaseURL
	}
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	return &Snapdeal{baseURL: strings.TrimRight(baseURL, "/"), maxCards: maxCards}
}

func (s *Snapdeal) Platform() domain.Platform {
	return domain.PlatformSnapdeal
}

// SearchURL builds the relevance-sorted search URL; spaces are sent as %20
func (s *Snapdeal) SearchURL(query string) string {
	return s.baseURL + "/search?keyword=" + percentEscape(query) + "&sort=plrty"
}

// Extract returns every well-formed product tuple on the page
func (s *Snapdeal) Extract(body []byte) []domain.ProductRecord {
	return extractCards("Snapdeal", body, snapdealCard, s.maxCards, s.mapCard)
}

func (s *Snapdeal) mapCard(card *goquery.Selection) domain.ProductRecord {
	price := firstText(card, snapdealPrice)
	if price == "" {
		price = domain.PriceNotAvailable
	}

	rating := domain.NoRating
	if style := firstAttr(card, snapdealRating, "style"); style != "" {
		rating = RatingFromStyle(style)
	}

	return domain.ProductRecord{
		Title:    firstText(card, snapdealTitle),
		Price:    price,
		Link:     NormalizeLink(firstAttr(card, snapdealLink, "href")),
		Rating:   rating,
		ImageURL: imageURL(card, snapdealImage, "data-src"),
		Platform: domain.PlatformSnapdeal.Tag(),
	}
}

package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/shopscout/backend/internal/domain"
)

// ShopCluesBaseURL is the production origin of ShopClues
const ShopCluesBaseURL = "https://www.shopclues.com"

// ShopClues card markup
var (
	shopCluesCard  = cascadia.MustCompile(".column.col3.search_blocks")
	shopCluesTitle = cascadia.MustCompile("h2")
	shopCluesPrice = cascadia.MustCompile("span.p_price")
	shopCluesLink  = cascadia.MustCompile("a")
	shopCluesImage = cascadia.MustCompile("img")
)

// ShopClues searches shopclues.com and reads its search blocks.
// Ratings are not shown on ShopClues result pages.
type ShopClues struct {
	baseURL  string
	maxCards int
}

// NewShopClues creates the ShopClues source. Empty or non-positive arguments fall back to defaults.
func NewShopClues(baseURL string, maxCards int) *ShopClues {
	if baseURL == "" {
		baseURL = ShopCluesBaseURL
	}
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	return &ShopClues{baseURL: strings.TrimRight(baseURL, "/"), maxCards: maxCards}
}

func (s *ShopClues) Platform() domain.Platform {
	return domain.PlatformShopClues
}

// SearchURL builds the search URL; spaces are sent as +
func (s *ShopClues) SearchURL(query string) string {
	return s.baseURL + "/search?q=" + plusEscape(query)
}

// Extract returns every well-formed search block on the page
func (s *ShopClues) Extract(body []byte) []domain.ProductRecord {
	return extractCards("ShopClues", body, shopCluesCard, s.maxCards, s.mapCard)
}

func (s *ShopClues) mapCard(card *goquery.Selection) domain.ProductRecord {
	price := firstText(card, shopCluesPrice)
	if price == "" {
		price = domain.PriceNotAvailable
	}

	return domain.ProductRecord{
		Title:    firstText(card, shopCluesTitle),
		Price:    price,
		Link:     NormalizeLink(firstAttr(card, shopCluesLink, "href")),
		Rating:   domain.NoRating,
		ImageURL: imageURL(card, shopCluesImage, "data-img"),
		Platform: domain.PlatformShopClues.Tag(),
	}
}

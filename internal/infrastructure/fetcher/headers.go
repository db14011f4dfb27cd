package fetcher

import "net/http"

// HeaderSet is one browser profile's request headers
type HeaderSet map[string]string

// apply copies the header set onto req
func (h HeaderSet) apply(req *http.Request) {
	for k, v := range h {
		req.Header.Set(k, v)
	}
}

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptLanguage = "en-IN,en-GB;q=0.9,en-US;q=0.8,en;q=0.7"
)

// DefaultHeaderPool emulates five common desktop browsers.
// Accept-Encoding is left to net/http so gzip is decoded transparently.
func DefaultHeaderPool() []HeaderSet {
	return []HeaderSet{
		{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
			"Accept":          acceptHTML,
			"Accept-Language": acceptLanguage,
		},
		{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
		},
		{
			"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
			"Accept":          acceptHTML,
			"Accept-Language": acceptLanguage,
		},
		{
			"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-GB,en;q=0.9",
		},
		{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
			"Accept":          acceptHTML,
			"Accept-Language": acceptLanguage,
		},
	}
}

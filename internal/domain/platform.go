package domain

import "sort"

// Platform identifies a supported source site in API requests
type Platform string

const (
	PlatformSnapdeal  Platform = "snapdeal"
	PlatformShopClues Platform = "shopclues"
)

// platformTags maps a platform to the tag stamped on its records
var platformTags = map[Platform]string{
	PlatformSnapdeal:  "Snapdeal",
	PlatformShopClues: "ShopClues",
}

// ParsePlatform resolves a request identifier. Matching is exact.
func ParsePlatform(name string) (Platform, error) {
	p := Platform(name)
	if _, ok := platformTags[p]; !ok {
		return "", ErrInvalidPlatform
	}
	return p, nil
}

// Tag returns the display name written into ProductRecord.Platform
func (p Platform) Tag() string {
	return platformTags[p]
}

// SupportedPlatforms returns every known platform in sorted order
func SupportedPlatforms() []Platform {
	platforms := make([]Platform, 0, len(platformTags))
	for p := range platformTags {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

package domain

import "fmt"

// Category partitions credit balances by content kind. Every model slug
// belongs to exactly one category and charges are taken from that
// category's balance only.
type Category string

const (
	CategoryText  Category = "text"
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
)

// Categories lists all balance categories in display order.
var Categories = []Category{CategoryText, CategoryImage, CategoryVideo, CategoryAudio}

func (c Category) Valid() bool {
	switch c {
	case CategoryText, CategoryImage, CategoryVideo, CategoryAudio:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

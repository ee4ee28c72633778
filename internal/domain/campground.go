package domain

import (
	"time"
)

// Campground is the primary shared content aggregate. It owns its reviews
// and its image references: deleting a campground deletes every review and
// releases every image from the asset store.
type Campground struct {
	// ID is the unique identifier for the campground (auto-generated).
	ID int64 `json:"id"`

	// Title is the campground's display title.
	Title string `json:"title"`

	// Description is the free-form narrative text.
	Description string `json:"description"`

	// Location is the free-text address used for geocoding.
	Location string `json:"location"`

	// Price is the nightly price.
	Price float64 `json:"price"`

	// Geometry is the geocoded point for the location, nil when geocoding
	// was unavailable or failed. Never blocks a save.
	Geometry *Point `json:"geometry,omitempty"`

	// AuthorID is the owning user. Zero only as a transitional/repair
	// state for rows that predate ownership; every campground created
	// through the normal flow has a non-zero author.
	AuthorID int64 `json:"author_id"`

	// Images is the ordered sequence of asset references.
	Images []Image `json:"images"`

	// CreatedAt is the timestamp when the campground was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the campground was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCampground creates a campground owned by the given user.
func NewCampground(title, description, location string, price float64, authorID int64) *Campground {
	now := time.Now().UTC()
	return &Campground{
		Title:       title,
		Description: description,
		Location:    location,
		Price:       price,
		AuthorID:    authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Point is a geocoded longitude/latitude pair.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Image is a reference to an externally stored asset: the serving URL plus
// the handle needed to delete it from the store.
type Image struct {
	// ID is the unique identifier for the image row (auto-generated).
	ID int64 `json:"id"`

	// URL is where the asset is served from.
	URL string `json:"url"`

	// StorageKey is the deletion handle in the asset store.
	StorageKey string `json:"-"`

	// Position preserves upload order.
	Position int `json:"position"`
}

// IsOwnedBy reports whether the given user created this campground.
func (c *Campground) IsOwnedBy(userID int64) bool {
	return c.AuthorID != 0 && c.AuthorID == userID
}

// Caption returns a short, plain-text summary used by the map feed.
// Truncates the description at a word boundary near the limit.
func (c *Campground) Caption() string {
	const limit = 80
	runes := []rune(c.Description)
	if len(runes) <= limit {
		return c.Description
	}
	cut := runes[:limit]
	for i := len(cut) - 1; i > 0; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return string(cut) + "..."
}

package types

import "time"

// Sort orders accepted by the catalog query engine.
const (
	SortPopularityDesc = "popularity_desc"
	SortPopularityAsc  = "popularity_asc"
	SortNewest         = "newest"
)

// GenreAll is the sentinel genre value that disables genre filtering.
const GenreAll = "All"

// Movie represents a catalog entry in the cinehub system.
type Movie struct {
	// ID is the unique identifier of the movie, assigned by the catalog
	// store on insert.
	ID int `json:"id"`

	// Name is the display title of the movie. Required on insert.
	Name string `json:"name"`

	// Details is an optional free-form synopsis.
	Details string `json:"details,omitempty"`

	// Genre is an optional genre label used for filtering and
	// recommendations (e.g., "Drama", "Thriller").
	Genre string `json:"genre,omitempty"`

	// PosterURL points at the movie's poster image. It is set by the
	// poster upload flow or supplied directly on insert/update.
	PosterURL string `json:"poster_url,omitempty"`

	// PopularityScore is the movie's popularity on a 0-100 scale.
	PopularityScore int `json:"popularity_score"`

	// CreatedAt is the timestamp at which the movie entered the catalog.
	// It is set by the store on insert and never changes afterwards.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// MovieFilter narrows and orders a catalog query.
type MovieFilter struct {
	// Search is a case-insensitive substring match against Name.
	// Empty matches everything.
	Search string `json:"search"`

	// Genre is an exact-match genre filter. Empty or GenreAll matches
	// everything.
	Genre string `json:"genre"`

	// SortBy is one of the Sort* constants. Empty means SortPopularityDesc.
	SortBy string `json:"sortBy"`
}

// MoviePatch is a partial update applied to an existing movie.
// Nil fields are left untouched.
type MoviePatch struct {
	Name            *string `json:"name,omitempty"`
	Details         *string `json:"details,omitempty"`
	Genre           *string `json:"genre,omitempty"`
	PosterURL       *string `json:"poster_url,omitempty"`
	PopularityScore *int    `json:"popularity_score,omitempty"`
}

// MoviePage is one slice of a filtered, sorted catalog view.
type MoviePage struct {
	// Results holds the movies in the page, in query order.
	Results []Movie `json:"results"`

	// NextOffset is the offset a caller passes to fetch the next page.
	// It is offset+limit regardless of whether more items exist.
	NextOffset int `json:"next_offset"`

	// HasMore reports whether the filtered view extends past NextOffset.
	HasMore bool `json:"has_more"`

	// TotalCount is the size of the filtered view, not of the whole
	// catalog.
	TotalCount int `json:"total_count"`
}

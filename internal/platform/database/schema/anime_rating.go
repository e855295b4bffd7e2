package schema

// AnimeRatingTable represents the 'anime.rating' table
type AnimeRatingTable struct {
	Table     string
	AnnictID  string
	Rating    string
	UpdatedAt string
}

// AnimeRating is the schema definition for anime.rating
var AnimeRating = AnimeRatingTable{
	Table:     "anime.rating",
	AnnictID:  "annictid",
	Rating:    "rating",
	UpdatedAt: "updatedat",
}

package store

const (
	allGamesKey      = "games:all"
	reviewedGamesKey = "games:reviewed"

	gamePrefix           = "game:"
	reviewPrefix         = "review:"
	reviewsForGamePrefix = "reviews_for_game:"
	userPrefix           = "user:"
)

func gameKey(slug string) string {
	return gamePrefix + slug
}

func reviewKey(id string) string {
	return reviewPrefix + id
}

func reviewsForGameKey(slug string) string {
	return reviewsForGamePrefix + slug
}

func userReviewsKey(userID string) string {
	return userPrefix + userID + ":reviews"
}

// userGameKey is the duplicate-review guard for a (user, game) pair. It holds
// the id of the user's review of that game.
func userGameKey(userID, slug string) string {
	return userPrefix + userID + ":game:" + slug
}

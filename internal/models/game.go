package models

type Game struct {
	Slug      string `json:"slug" gorm:"primaryKey;size:255"`
	Title     string `json:"title" gorm:"not null"`
	CoverURL  string `json:"coverUrl,omitempty"`
	CoverKey  string `json:"-"`
	CreatedAt int64  `json:"createdAt" gorm:"autoCreateTime:milli"`
}

// GameSummary is the catalog listing entry.
type GameSummary struct {
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	CoverURL     string  `json:"coverUrl,omitempty"`
	ReviewCount  int64   `json:"reviewCount"`
	AverageScore float64 `json:"averageScore"`
}

type GameDetails struct {
	Game    Game     `json:"game"`
	Reviews []Review `json:"reviews"`
}

type CreateGameRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

type UpdateGameRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

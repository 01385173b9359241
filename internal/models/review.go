package models

// Scores holds the eight rated dimensions of a review, each in [0,10].
type Scores struct {
	Jogabilidade   int `json:"jogabilidade"`
	Arte           int `json:"arte"`
	TrilhaSonora   int `json:"trilhaSonora"`
	Diversao       int `json:"diversao"`
	Rejogabilidade int `json:"rejogabilidade"`
	Graficos       int `json:"graficos"`
	Complexidade   int `json:"complexidade"`
	Lore           int `json:"lore"`
}

func (s Scores) Values() []int {
	return []int{
		s.Jogabilidade,
		s.Arte,
		s.TrilhaSonora,
		s.Diversao,
		s.Rejogabilidade,
		s.Graficos,
		s.Complexidade,
		s.Lore,
	}
}

type Review struct {
	ID           string  `json:"id" gorm:"primaryKey;size:64"`
	UserID       string  `json:"userId" gorm:"not null;size:255;uniqueIndex:idx_reviews_user_game"`
	UserName     string  `json:"userName"`
	UserImage    string  `json:"userImage,omitempty"`
	GameTitle    string  `json:"gameTitle"`
	GameSlug     string  `json:"gameSlug" gorm:"not null;size:255;index;uniqueIndex:idx_reviews_user_game"`
	CreatedAt    int64   `json:"createdAt" gorm:"autoCreateTime:milli"`
	UpdatedAt    int64   `json:"updatedAt,omitempty" gorm:"autoUpdateTime:milli"`
	Scores       Scores  `json:"scores" gorm:"embedded;embeddedPrefix:score_"`
	HorasJogadas float64 `json:"horasJogadas"`
	NotaFinal    float64 `json:"notaFinal"`

	Game *Game `json:"-" gorm:"foreignKey:GameSlug;references:Slug;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// ScoresInput is the request form of Scores. Every dimension has to be sent;
// an absent key is not read as zero.
type ScoresInput struct {
	Jogabilidade   *int `json:"jogabilidade" binding:"required,min=0,max=10"`
	Arte           *int `json:"arte" binding:"required,min=0,max=10"`
	TrilhaSonora   *int `json:"trilhaSonora" binding:"required,min=0,max=10"`
	Diversao       *int `json:"diversao" binding:"required,min=0,max=10"`
	Rejogabilidade *int `json:"rejogabilidade" binding:"required,min=0,max=10"`
	Graficos       *int `json:"graficos" binding:"required,min=0,max=10"`
	Complexidade   *int `json:"complexidade" binding:"required,min=0,max=10"`
	Lore           *int `json:"lore" binding:"required,min=0,max=10"`
}

// Scores reports false when any dimension is missing.
func (in *ScoresInput) Scores() (Scores, bool) {
	if in == nil {
		return Scores{}, false
	}
	fields := []*int{
		in.Jogabilidade, in.Arte, in.TrilhaSonora, in.Diversao,
		in.Rejogabilidade, in.Graficos, in.Complexidade, in.Lore,
	}
	for _, f := range fields {
		if f == nil {
			return Scores{}, false
		}
	}
	return Scores{
		Jogabilidade:   *in.Jogabilidade,
		Arte:           *in.Arte,
		TrilhaSonora:   *in.TrilhaSonora,
		Diversao:       *in.Diversao,
		Rejogabilidade: *in.Rejogabilidade,
		Graficos:       *in.Graficos,
		Complexidade:   *in.Complexidade,
		Lore:           *in.Lore,
	}, true
}

// ReviewRequest is the body of both create and update. GameSlug or GameTitle
// identifies the game on create and is ignored on update.
type ReviewRequest struct {
	GameSlug     string       `json:"gameSlug"`
	GameTitle    string       `json:"gameTitle"`
	Scores       *ScoresInput `json:"scores" binding:"required"`
	HorasJogadas float64      `json:"horasJogadas" binding:"min=0"`
	NotaFinal    *float64     `json:"notaFinal"`
}

// ReviewUpdate is what an author may change on an existing review. The game,
// author and creation time of the stored record are left alone.
type ReviewUpdate struct {
	UserName     string
	UserImage    string
	Scores       Scores
	HorasJogadas float64
	NotaFinal    float64
	UpdatedAt    int64
}

func (u ReviewUpdate) Apply(r *Review) {
	r.UserName = u.UserName
	r.UserImage = u.UserImage
	r.Scores = u.Scores
	r.HorasJogadas = u.HorasJogadas
	r.NotaFinal = u.NotaFinal
	r.UpdatedAt = u.UpdatedAt
}

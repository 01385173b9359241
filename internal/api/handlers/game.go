package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/monitoring"
	"github.com/princeprakhar/game-reviews-backend/internal/services"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
)

type GameHandler struct {
	gameService *services.GameService
	metrics     *monitoring.Metrics
}

func NewGameHandler(gameService *services.GameService, metrics *monitoring.Metrics) *GameHandler {
	return &GameHandler{gameService: gameService, metrics: metrics}
}

func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.gameService.ListGames(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch games", err)
		return
	}
	utils.SendSuccess(c, "Games retrieved successfully", games)
}

func (h *GameHandler) ListReviewedGames(c *gin.Context) {
	games, err := h.gameService.ListReviewedGames(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch reviewed games", err)
		return
	}
	utils.SendSuccess(c, "Reviewed games retrieved successfully", games)
}

func (h *GameHandler) GetGame(c *gin.Context) {
	details, err := h.gameService.GetGame(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, "Failed to fetch game", err)
		return
	}
	utils.SendSuccess(c, "Game retrieved successfully", details)
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	game, err := h.gameService.CreateGame(c.Request.Context(), req.Title)
	if err != nil {
		respondError(c, "Failed to create game", err)
		return
	}

	h.metrics.RecordEvent(monitoring.EventGameCreated)
	utils.SendCreated(c, "Game created successfully", game)
}

func (h *GameHandler) UpdateGame(c *gin.Context) {
	var req models.UpdateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	game, err := h.gameService.UpdateTitle(c.Request.Context(), c.Param("slug"), req.Title)
	if err != nil {
		respondError(c, "Failed to update game", err)
		return
	}
	utils.SendSuccess(c, "Game updated successfully", game)
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.gameService.DeleteGame(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, "Failed to delete game", err)
		return
	}

	h.metrics.RecordEvent(monitoring.EventGameDeleted)
	utils.SendSuccess(c, "Game deleted successfully", nil)
}

func (h *GameHandler) UploadCover(c *gin.Context) {
	fileHeader, err := c.FormFile("cover")
	if err != nil {
		utils.SendValidationError(c, "cover file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.SendInternalError(c, "Failed to read cover", err)
		return
	}
	defer file.Close()

	game, err := h.gameService.UploadCover(
		c.Request.Context(),
		c.Param("slug"),
		file,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
	)
	if err != nil {
		respondError(c, "Failed to upload cover", err)
		return
	}

	h.metrics.RecordEvent(monitoring.EventCoverUploaded)
	utils.SendSuccess(c, "Cover uploaded successfully", game)
}

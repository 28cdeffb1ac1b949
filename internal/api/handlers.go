package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/storage"
)

// Handler contains the API handlers and their collaborators.
type Handler struct {
	db     *gorm.DB
	store  *storage.Storage
	issuer *auth.Issuer
	cfg    *config.Config
	log    *logrus.Logger
}

func NewHandler(db *gorm.DB, store *storage.Storage, issuer *auth.Issuer, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{
		db:     db,
		store:  store,
		issuer: issuer,
		cfg:    cfg,
		log:    log,
	}
}

// Ping is the liveness probe.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

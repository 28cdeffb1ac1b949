package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
)

type postSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	Date      string   `json:"date"`
	LikeCount int      `json:"like_count"`
	UserID    string   `json:"user_id"`
}

func toPostSummary(p *models.Post) postSummary {
	return postSummary{
		ID:        p.ID,
		Title:     p.Title,
		Tags:      p.Tags,
		Date:      p.Date,
		LikeCount: p.LikeCount,
		UserID:    p.UserID,
	}
}

// PublishPost accepts post metadata plus an optional cover image, writes
// the frontmatter document and asset to disk, and records a summary row.
// The document is removed again if the database insert fails, so the row
// and the file appear or disappear together.
func (h *Handler) PublishPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		unauthorized(c, "user not authenticated")
		return
	}

	title := c.PostForm("title")
	excerpt := c.PostForm("excerpt")
	date := c.PostForm("date")
	markdown := c.PostForm("markdown")
	if title == "" || excerpt == "" || date == "" || markdown == "" {
		c.JSON(http.StatusBadRequest, errorBody("title, excerpt, date and markdown are required"))
		return
	}

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("tags must be a JSON array of strings"))
			return
		}
	}

	// Validate the upload before touching disk or the database.
	imageFile, err := c.FormFile("ogImage")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, errorBody("failed to read ogImage"))
		return
	}
	if imageFile != nil && !storage.AllowedImageExt(imageFile.Filename) {
		c.JSON(http.StatusBadRequest, errorBody("unsupported image extension"))
		return
	}

	postID, err := models.NewID()
	if err != nil {
		h.internalError(c, err)
		return
	}

	coverImage := h.cfg.DefaultCoverImage
	if imageFile != nil {
		src, err := imageFile.Open()
		if err != nil {
			h.internalError(c, err)
			return
		}
		defer src.Close()

		coverImage, err = h.store.SaveAsset(postID, imageFile.Filename, src)
		if err != nil {
			h.internalError(c, err)
			return
		}
	}

	doc := storage.Document{
		Title:      title,
		Excerpt:    excerpt,
		CoverImage: coverImage,
		Tags:       tags,
		Date:       date,
		Markdown:   markdown,
	}
	if err := h.store.WriteDocument(postID, doc); err != nil {
		h.store.Remove(postID)
		h.internalError(c, err)
		return
	}

	post := &models.Post{
		ID:     postID,
		Title:  title,
		Tags:   models.StringArray(tags),
		Date:   date,
		UserID: userID,
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewPosts(tx).Create(c.Request.Context(), post)
	})
	if err != nil {
		// Undo the filesystem half so no orphaned document survives a
		// failed commit.
		h.store.Remove(postID)
		h.log.WithError(err).Error("failed to record post")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// ListPosts returns summaries for all posts, newest first.
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := repository.NewPosts(h.db).List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	response := make([]postSummary, 0, len(posts))
	for i := range posts {
		response = append(response, toPostSummary(&posts[i]))
	}
	c.JSON(http.StatusOK, response)
}

// GetPost returns a single post summary.
func (h *Handler) GetPost(c *gin.Context) {
	post, err := repository.NewPosts(h.db).FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("post not found"))
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostSummary(post))
}

// GetAsset serves an uploaded cover image from the post's asset
// directory.
func (h *Handler) GetAsset(c *gin.Context) {
	path, err := h.store.AssetPath(c.Param("id"), c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorBody("asset not found"))
		return
	}
	c.File(path)
}

type likeInput struct {
	PostID      string `json:"post_id" binding:"required"`
	Fingerprint string `json:"fingerprint" binding:"required,min=10"`
}

type likeResponse struct {
	PostID    string `json:"post_id"`
	LikeCount int    `json:"like_count"`
	IsLiked   bool   `json:"is_liked"`
}

// ToggleLike adds or removes an anonymous like keyed by the caller's
// fingerprint.
func (h *Handler) ToggleLike(c *gin.Context) {
	var input likeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	ctx := c.Request.Context()
	posts := repository.NewPosts(h.db)

	if _, err := posts.FindByID(ctx, input.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("post not found"))
			return
		}
		h.internalError(c, err)
		return
	}

	existing, err := posts.FindLike(ctx, input.PostID, input.Fingerprint)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.internalError(c, err)
		return
	}

	liked := existing == nil
	err = h.db.Transaction(func(tx *gorm.DB) error {
		txPosts := repository.NewPosts(tx)
		if existing == nil {
			id, err := models.NewID()
			if err != nil {
				return err
			}
			like := &models.Like{
				ID:          id,
				PostID:      input.PostID,
				Fingerprint: input.Fingerprint,
				IPAddress:   c.ClientIP(),
			}
			if err := txPosts.CreateLike(ctx, like); err != nil {
				return err
			}
			return txPosts.AdjustLikeCount(ctx, input.PostID, 1)
		}
		if err := txPosts.DeleteLike(ctx, existing); err != nil {
			return err
		}
		return txPosts.AdjustLikeCount(ctx, input.PostID, -1)
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	post, err := posts.FindByID(ctx, input.PostID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, likeResponse{
		PostID:    post.ID,
		LikeCount: post.LikeCount,
		IsLiked:   liked,
	})
}

// GetLikeStatus reports whether the given fingerprint has liked a post.
func (h *Handler) GetLikeStatus(c *gin.Context) {
	fingerprint := c.Query("fingerprint")
	if fingerprint == "" {
		c.JSON(http.StatusBadRequest, errorBody("fingerprint is required"))
		return
	}

	ctx := c.Request.Context()
	posts := repository.NewPosts(h.db)

	post, err := posts.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("post not found"))
			return
		}
		h.internalError(c, err)
		return
	}

	_, err = posts.FindLike(ctx, post.ID, fingerprint)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, likeResponse{
		PostID:    post.ID,
		LikeCount: post.LikeCount,
		IsLiked:   err == nil,
	})
}

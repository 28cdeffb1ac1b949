package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestPublishPost(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")

	fields := publishFields()
	fields["tags"] = `["go","rust"]`
	w := env.publish(t, token, fields, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"success"}`, w.Body.String())

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "2024-01-01", post.Date)

	// The stored tags field holds the original list, independent of the
	// rendered bullet list in the document.
	assert.Equal(t, models.StringArray{"go", "rust"}, post.Tags)

	data, err := os.ReadFile(env.store.DocumentPath(post.ID))
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "  - go\n")
	assert.Contains(t, doc, "  - rust\n")
	assert.Contains(t, doc, "title: Hello\n")
	assert.Contains(t, doc, "# Hi")
}

func TestPublishPost_DefaultCoverImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")

	w := env.publish(t, token, publishFields(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)

	data, err := os.ReadFile(env.store.DocumentPath(post.ID))
	require.NoError(t, err)
	assert.Contains(t, string(data), "coverImage: /assets/blog/dynamic-routing/cover.webp\n")
}

func TestPublishPost_WithImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")

	w := env.publish(t, token, publishFields(), "cover.png", []byte("fake-png-bytes"))
	require.Equal(t, http.StatusOK, w.Code)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)

	// Image lands in the post's asset directory, document references it.
	path, err := env.store.AssetPath(post.ID, "cover.png")
	require.NoError(t, err)
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(saved))

	data, err := os.ReadFile(env.store.DocumentPath(post.ID))
	require.NoError(t, err)
	assert.Contains(t, string(data), "coverImage: /assets/blog/"+post.ID+"/cover.png\n")

	// And it is served back over the asset route.
	w2 := env.doJSON(t, http.MethodGet, "/api/assets/"+post.ID+"/cover.png", nil, "")
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "fake-png-bytes", w2.Body.String())
}

func TestPublishPost_BadImageExtension(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")

	w := env.publish(t, token, publishFields(), "payload.exe", []byte("mz"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was written.
	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestPublishPost_InvalidTags(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")

	fields := publishFields()
	fields["tags"] = "not-json"
	w := env.publish(t, token, fields, "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishPost_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")

	fields := publishFields()
	delete(fields, "markdown")
	w := env.publish(t, token, fields, "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishPost_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	w := env.publish(t, "", publishFields(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListAndGetPosts(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")

	first := publishFields()
	first["title"] = "First"
	require.Equal(t, http.StatusOK, env.publish(t, token, first, "", nil).Code)
	second := publishFields()
	second["title"] = "Second"
	require.Equal(t, http.StatusOK, env.publish(t, token, second, "", nil).Code)

	w := env.doJSON(t, http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []postSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	// Newest first: UUIDv7 ids sort by creation time.
	assert.Equal(t, "Second", list[0].Title)
	assert.Equal(t, "First", list[1].Title)

	w = env.doJSON(t, http.MethodGet, "/api/posts/"+list[0].ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got postSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Second", got.Title)

	w = env.doJSON(t, http.MethodGet, "/api/posts/missing-id", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")
	require.Equal(t, http.StatusOK, env.publish(t, token, publishFields(), "", nil).Code)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)

	like := gin.H{"post_id": post.ID, "fingerprint": "fp-1234567890"}

	w := env.doJSON(t, http.MethodPost, "/api/posts/like", like, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp likeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsLiked)
	assert.Equal(t, 1, resp.LikeCount)

	// Same fingerprint toggles the like off again.
	w = env.doJSON(t, http.MethodPost, "/api/posts/like", like, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsLiked)
	assert.Equal(t, 0, resp.LikeCount)
}

func TestToggleLike_ShortFingerprint(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/posts/like", gin.H{
		"post_id":     "some-id",
		"fingerprint": "short",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLikeStatus(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "secret123")
	require.Equal(t, http.StatusOK, env.publish(t, token, publishFields(), "", nil).Code)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)

	w := env.doJSON(t, http.MethodGet, "/api/posts/"+post.ID+"/like-status?fingerprint=fp-1234567890", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp likeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsLiked)

	env.doJSON(t, http.MethodPost, "/api/posts/like", gin.H{
		"post_id": post.ID, "fingerprint": "fp-1234567890",
	}, "")

	w = env.doJSON(t, http.MethodGet, "/api/posts/"+post.ID+"/like-status?fingerprint=fp-1234567890", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsLiked)
	assert.Equal(t, 1, resp.LikeCount)

	w = env.doJSON(t, http.MethodGet, "/api/posts/"+post.ID+"/like-status", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// End to end: register, publish, ping.
func TestEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/users/register", gin.H{
		"username": "alice",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var reg struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	w = env.publish(t, reg.AccessToken, publishFields(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"success"}`, w.Body.String())

	w = env.doJSON(t, http.MethodGet, "/api/ping", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bionews/db"
	"bionews/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ArticleStore interface {
	List(ctx context.Context, category string, limit int) ([]model.Article, error)
	GetByID(ctx context.Context, id string) (*model.Article, error)
	Search(ctx context.Context, query, category string, limit int) ([]model.Article, error)
	CountAll(ctx context.Context) (int, error)
}

type ArticleHandler struct {
	store ArticleStore
}

func NewArticleHandler(store ArticleStore) *ArticleHandler {
	return &ArticleHandler{store: store}
}

func (h *ArticleHandler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Biotech News API", "version": "1.0.0"})
}

func (h *ArticleHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ArticleHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{Categories: model.Categories})
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	limit := getQueryLimit(c)
	category := c.Query("category")
	if category != "" && !model.ValidCategory(category) {
		category = ""
	}

	// The unfiltered default listing is the hot path; serve it from the
	// cache when possible.
	cacheable := category == "" && limit == defaultListLimit
	if cacheable {
		if cached := db.CacheGet(db.FeedCacheKey); cached != "" {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	articles, err := h.store.List(c.Request.Context(), category, limit)
	if err != nil {
		slog.Error("error listing articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := toArticleResponses(articles)
	if cacheable {
		if payload, err := json.Marshal(res); err == nil {
			db.CacheSet(db.FeedCacheKey, string(payload))
		}
	}
	c.JSON(http.StatusOK, res)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	article, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		slog.Error("error fetching article", "error", err, "article_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(*article))
}

func (h *ArticleHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search request"})
		return
	}

	if req.Limit <= 0 || req.Limit > maxListLimit {
		req.Limit = defaultListLimit
	}
	if req.Category != "" && !model.ValidCategory(req.Category) {
		req.Category = ""
	}

	articles, err := h.store.Search(c.Request.Context(), req.Query, req.Category, req.Limit)
	if err != nil {
		slog.Error("error searching articles", "error", err, "query", req.Query)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, toArticleResponses(articles))
}

func getQueryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 || limit > maxListLimit {
		return defaultListLimit
	}
	return limit
}

func toArticleResponse(a model.Article) ArticleResponse {
	keywords := a.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Headline:    a.Headline,
		Summary:     a.Summary,
		Content:     a.Content,
		Category:    a.Category,
		Source:      a.Source,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt.Format(time.RFC3339),
		Keywords:    keywords,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func toArticleResponses(articles []model.Article) []ArticleResponse {
	res := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		res = append(res, toArticleResponse(a))
	}
	return res
}

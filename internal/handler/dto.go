package handler

// ArticleResponse mirrors the stored article shape on the wire.
type ArticleResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Headline    string   `json:"headline,omitempty"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"image_url,omitempty"`
	PublishedAt string   `json:"published_at"`
	Keywords    []string `json:"keywords"`
	CreatedAt   string   `json:"created_at"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type SearchRequest struct {
	Query    string `json:"query" binding:"required"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

type QuoteResponse struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	CurrentPrice  float64  `json:"current_price"`
	PriceChange   float64  `json:"price_change"`
	PercentChange float64  `json:"percent_change"`
	Volume        int64    `json:"volume"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	Sector        string   `json:"sector"`
	UpdatedAt     string   `json:"updated_at"`
}

type PreferencesRequest struct {
	UserID     string   `json:"user_id" binding:"required"`
	Categories []string `json:"categories"`
}

type PreferencesResponse struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Categories []string `json:"preferred_categories"`
	CreatedAt  string   `json:"created_at"`
}

type RefreshResponse struct {
	Fetched    int    `json:"total_fetched"`
	Stored     int    `json:"stored"`
	Duplicated int    `json:"duplicated"`
	Message    string `json:"message"`
}

type MarketRefreshResponse struct {
	Requested int    `json:"requested"`
	Stored    int    `json:"stored"`
	Message   string `json:"message"`
}

type StatusResponse struct {
	NewsLastUpdate   string `json:"news_last_update,omitempty"`
	MarketLastUpdate string `json:"market_last_update,omitempty"`
	ArticleCount     int    `json:"article_count"`
}

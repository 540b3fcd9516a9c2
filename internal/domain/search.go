package domain

// SearchResult is a normalized web search hit.
type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// VideoRef is a curated explainer video linked to a question by keyword.
type VideoRef struct {
	ID        string `json:"id"        yaml:"id"`
	Title     string `json:"title"     yaml:"title"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
	URL       string `json:"url"       yaml:"url"`
	Embed     string `json:"embed"     yaml:"embed"`
}

package blog

// APIVersion はAPIのバージョン。
const APIVersion = "1.0.0"

// EndpointDoc は1エンドポイントの説明。
type EndpointDoc struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Description string            `json:"description"`
	Query       map[string]string `json:"query,omitempty"`
	Example     string            `json:"example"`
}

// IndexDocument は GET /api/v1 で返すAPIの自己記述ドキュメント。
type IndexDocument struct {
	Version        string                            `json:"version"`
	Name           string                            `json:"name"`
	Description    string                            `json:"description"`
	BaseURL        string                            `json:"baseUrl"`
	Endpoints      map[string]map[string]EndpointDoc `json:"endpoints"`
	ResponseFormat map[string]any                    `json:"responseFormat"`
	Features       []string                          `json:"features"`
	UsageExamples  map[string]string                 `json:"usageExamples"`
}

// Index はAPIのエンドポイント一覧と応答形式の説明を返す。
func (s *Service) Index() IndexDocument {
	pageQuery := map[string]string{
		"page":     "Page number for pagination (default: 1)",
		"pageSize": "Number of posts per page (default: 10, max: 100). Alias: limit",
	}

	return IndexDocument{
		Version:     APIVersion,
		Name:        "Blog API",
		Description: "Read-only JSON API for blog posts stored as MDX files with front matter",
		BaseURL:     s.baseURL + "/api/v1",
		Endpoints: map[string]map[string]EndpointDoc{
			"posts": {
				"getAllPosts": {
					Method:      "GET",
					Path:        "/posts",
					Description: "Retrieve all blog posts with pagination support",
					Query:       pageQuery,
					Example:     "/posts?page=1&pageSize=10",
				},
				"getRecentPosts": {
					Method:      "GET",
					Path:        "/posts/recent",
					Description: "Fetch the most recent blog posts",
					Query: map[string]string{
						"limit": "Number of recent posts to return (default: 5, max: 50)",
					},
					Example: "/posts/recent?limit=5",
				},
				"getPostBySlug": {
					Method:      "GET",
					Path:        "/posts/:slug",
					Description: "Retrieve a specific post with full content, metadata, and reading time estimate",
					Example:     "/posts/hello-world",
				},
				"getPostsByTag": {
					Method:      "GET",
					Path:        "/posts/tag/:tag",
					Description: "Get all posts associated with a specific tag with pagination",
					Query:       pageQuery,
					Example:     "/posts/tag/react?page=1&pageSize=10",
				},
			},
			"tags": {
				"getAllTags": {
					Method:      "GET",
					Path:        "/tags",
					Description: "Retrieve all available tags with optional post count",
					Query: map[string]string{
						"count": `Include post count for each tag (optional: "true")`,
					},
					Example: "/tags?count=true",
				},
			},
			"stats": {
				"getStats": {
					Method:      "GET",
					Path:        "/stats",
					Description: "Get blog statistics including total posts, reading metrics, distribution by year, and top tags",
					Example:     "/stats",
				},
			},
		},
		ResponseFormat: map[string]any{
			"post": map[string]any{
				"slug": "string - Post identifier/URL slug",
				"frontmatter": map[string]string{
					"title":       "string - Post title",
					"date":        "string - Publication date (ISO 8601 format)",
					"description": "string - Short post description for previews",
					"tags":        "string[] - Array of tags associated with the post",
					"cover":       "string (optional) - Cover image URL",
				},
				"content":     "object - Contains MDX content and reading time",
				"excerpt":     "string - Auto-generated preview text (200 characters)",
				"readingTime": "number - Estimated reading time in minutes",
			},
		},
		Features: []string{
			"Raw MDX content for client-side rendering",
			"Automatic reading time calculation based on word count",
			"Pagination with metadata and navigation hints",
			"Tag-based filtering and discovery",
			"HTTP caching with stale-while-revalidate",
			"Public access (no authentication required)",
			"CORS enabled for cross-origin requests",
		},
		UsageExamples: map[string]string{
			"Get 5 most recent posts":   "GET /posts/recent?limit=5",
			"Read a full post by slug":  "GET /posts/hello-world",
			"Browse posts by tag":       "GET /posts/tag/react?page=1&pageSize=10",
			"List all tags with counts": "GET /tags?count=true",
			"Get blog statistics":       "GET /stats",
		},
	}
}

package api

// LoginRequest is the payload for starting a session.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// CreatePostRequest is the payload for publishing a post.
type CreatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

// CommentRequest is the payload for commenting on a post.
type CommentRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

package api

import "fmt"

// Validate checks that LoginRequest has all required fields.
func (r *LoginRequest) Validate() error {
	if r.Identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	if r.Secret == "" {
		return fmt.Errorf("secret is required")
	}
	return nil
}

// Validate checks that CreatePostRequest has all required fields.
func (r *CreatePostRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Body == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

// Validate checks that CommentRequest has all required fields.
func (r *CommentRequest) Validate() error {
	if r.Body == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

package model

import "time"

// Post represents a single blog post as returned by the listing endpoint.
// Bodies are never fetched.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Author    string    `json:"author,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	Published time.Time `json:"published"`
	Updated   time.Time `json:"updated,omitempty"`
}

// Blog is the subset of blog metadata used when resolving a URL.
type Blog struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	TotalPosts int    `json:"total_posts"`
}

package blogger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blogger-lister/internal/model"
)

const (
	DefaultBaseURL      = "https://www.googleapis.com/blogger/v3"
	DefaultDiscoveryURL = "https://www.googleapis.com/discovery/v1/apis/blogger/v3/rest"
)

// Client is a minimal Blogger v3 API client authenticated with an API key.
// Docs: https://developers.google.com/blogger/docs/3.0/reference
type Client struct {
	baseURL      string
	discoveryURL string
	client       *http.Client
}

// NewClient creates a new Blogger client. Empty URLs fall back to the public
// Google endpoints. timeout bounds each request; zero leaves it to the transport.
func NewClient(baseURL, discoveryURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(discoveryURL) == "" {
		discoveryURL = DefaultDiscoveryURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		discoveryURL: discoveryURL,
		client:       &http.Client{Timeout: timeout},
	}
}

// Discovery is the part of the API discovery document we look at.
type Discovery struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	RootURL string `json:"rootUrl"`
}

// ListPostsParams are the inputs of a single posts.list page request.
type ListPostsParams struct {
	BlogID     string
	MaxResults int
	PageToken  string
	Key        string
}

// PostList is one page of posts.list. Items is nil both when the field is
// absent and when it is an empty array.
type PostList struct {
	Items         []model.Post
	NextPageToken string
}

type apiBlog struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Posts struct {
		TotalItems int `json:"totalItems"`
	} `json:"posts"`
}

type apiPost struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Published string   `json:"published"`
	Updated   string   `json:"updated"`
	Labels    []string `json:"labels"`
	Author    struct {
		DisplayName string `json:"displayName"`
	} `json:"author"`
}

type apiPostList struct {
	Items         []apiPost `json:"items"`
	NextPageToken string    `json:"nextPageToken"`
}

// Discover loads the API discovery document with the given key. This is the
// one-shot initialisation call that validates the key is usable.
func (c *Client) Discover(ctx context.Context, key string) (Discovery, error) {
	var out Discovery
	q := url.Values{"key": {key}}
	if err := c.getJSON(ctx, c.discoveryURL, q, &out); err != nil {
		return Discovery{}, err
	}
	slog.Debug("blogger: discovery loaded", "name", out.Name, "version", out.Version)
	return out, nil
}

// BlogByURL resolves a blog URL to its metadata.
// API: GET /blogs/byurl?url={url}
func (c *Client) BlogByURL(ctx context.Context, blogURL, key string) (model.Blog, error) {
	var raw apiBlog
	q := url.Values{"url": {blogURL}, "key": {key}}
	if err := c.getJSON(ctx, c.baseURL+"/blogs/byurl", q, &raw); err != nil {
		return model.Blog{}, err
	}
	return model.Blog{
		ID:         raw.ID,
		Name:       raw.Name,
		URL:        raw.URL,
		TotalPosts: raw.Posts.TotalItems,
	}, nil
}

// ListPosts fetches a single page of posts without bodies.
// API: GET /blogs/{blogId}/posts
func (c *Client) ListPosts(ctx context.Context, p ListPostsParams) (PostList, error) {
	q := url.Values{
		"fetchBodies": {"false"},
		"key":         {p.Key},
	}
	if p.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(p.MaxResults))
	}
	if p.PageToken != "" {
		q.Set("pageToken", p.PageToken)
	}
	endpoint := fmt.Sprintf("%s/blogs/%s/posts", c.baseURL, url.PathEscape(p.BlogID))
	var raw apiPostList
	if err := c.getJSON(ctx, endpoint, q, &raw); err != nil {
		return PostList{}, err
	}
	out := PostList{NextPageToken: raw.NextPageToken}
	if len(raw.Items) > 0 {
		out.Items = make([]model.Post, 0, len(raw.Items))
		for _, it := range raw.Items {
			out.Items = append(out.Items, convertPost(it))
		}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redactKey(ue.URL)
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("blogger: decode response: %w", err)
	}
	return nil
}

// redactKey hides the key query parameter so transport errors can be shown
// and logged.
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable URL)"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// convertPost maps an API post to our model. Unparseable timestamps are left zero.
func convertPost(p apiPost) model.Post {
	published, _ := time.Parse(time.RFC3339, p.Published)
	updated, _ := time.Parse(time.RFC3339, p.Updated)
	return model.Post{
		ID:        p.ID,
		Title:     p.Title,
		URL:       p.URL,
		Author:    p.Author.DisplayName,
		Labels:    p.Labels,
		Published: published,
		Updated:   updated,
	}
}

package lister

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"blogger-lister/internal/blogger"
	"blogger-lister/internal/model"
)

// DefaultPageSize is the upper bound the Blogger API accepts per page.
const DefaultPageSize = 500

// Remote is the subset of the Blogger API the service needs.
// *blogger.Client satisfies it.
type Remote interface {
	Discover(ctx context.Context, key string) (blogger.Discovery, error)
	BlogByURL(ctx context.Context, blogURL, key string) (model.Blog, error)
	ListPosts(ctx context.Context, p blogger.ListPostsParams) (blogger.PostList, error)
}

// Service authenticates against the remote API, resolves blog URLs and
// aggregates every post of a blog. Build one per process and share it.
type Service struct {
	remote   Remote
	session  *Session
	pageSize int
	maxPages int
}

// Option configures a Service.
type Option func(*Service)

// WithPageSize sets the per-page cap; values outside 1..500 are ignored.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= DefaultPageSize {
			s.pageSize = n
		}
	}
}

// WithMaxPages stops aggregation with ErrPageLimit after n pages. Zero means no limit.
func WithMaxPages(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxPages = n
		}
	}
}

// NewService creates a Service with a fresh, not-ready session.
func NewService(remote Remote, opts ...Option) *Service {
	s := &Service{
		remote:   remote,
		session:  &Session{},
		pageSize: DefaultPageSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Session exposes the service's session state.
func (s *Service) Session() *Session {
	return s.session
}

// Initialize authenticates the client with key. A ready session for the same
// key returns immediately without a network call.
func (s *Service) Initialize(ctx context.Context, key string) error {
	if key == "" {
		s.session.Reset()
		return newError(ErrMissingKey, nil, "API Key is missing for initialization.")
	}
	if s.session.Matches(key) {
		slog.Debug("lister: client already initialized with this key")
		return nil
	}
	if _, err := s.remote.Discover(ctx, key); err != nil {
		s.session.Reset()
		slog.Error("lister: initialize client failed", "status", StatusCode(err), "error", err)
		return newError(ErrAuthFailed, err,
			"Failed to initialize API client. Error: %s. Please check your key and restrictions.", ErrorMessage(err))
	}
	s.session.markReady(key)
	slog.Info("lister: client initialized")
	return nil
}

// Resolve converts a blog URL to the platform's blog ID. Callers are expected
// to have normalised the input and short-circuited numeric IDs; see ResolveRef.
func (s *Service) Resolve(ctx context.Context, blogURL, key string) (string, error) {
	if !s.session.Matches(key) {
		return "", notAuthenticated()
	}
	blog, err := s.remote.BlogByURL(ctx, blogURL, key)
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return "", newError(ErrBlogNotFound, err,
				"Blog not found for this URL. Please verify the URL and your API key restrictions.")
		}
		return "", newError(ErrResolveFailed, err, "Failed to get Blog ID from URL: %s", ErrorMessage(err))
	}
	if blog.ID == "" {
		return "", newError(ErrNotFound, nil,
			"Blog ID not found for the provided URL. Please check the URL carefully.")
	}
	slog.Info("lister: resolved blog", "url", blogURL, "blog_id", blog.ID, "name", blog.Name)
	return blog.ID, nil
}

// ResolveRef turns a user-entered blog reference into a blog ID: numeric
// references are used as-is, anything else is normalised and looked up.
func (s *Service) ResolveRef(ctx context.Context, ref, key string) (string, error) {
	ref, _ = NormalizeBlogRef(ref)
	if IsBlogID(ref) {
		return ref, nil
	}
	return s.Resolve(ctx, ref, key)
}

// ListAll walks every page of the blog's post listing and returns the posts
// in request order. A page without items ends the walk, as does a page
// without a next-page token. Nothing is retried.
func (s *Service) ListAll(ctx context.Context, blogID, key string) ([]model.Post, error) {
	if !s.session.Matches(key) {
		return nil, notAuthenticated()
	}
	var (
		posts []model.Post
		token string
		pages int
	)
	for {
		if s.maxPages > 0 && pages >= s.maxPages {
			return nil, newError(ErrPageLimit, nil,
				"Stopped after %d pages (%d posts); raise blogger.max_pages to list more.", pages, len(posts))
		}
		page, err := s.remote.ListPosts(ctx, blogger.ListPostsParams{
			BlogID:     blogID,
			MaxResults: s.pageSize,
			PageToken:  token,
			Key:        key,
		})
		if err != nil {
			return nil, listError(err)
		}
		pages++
		if len(page.Items) == 0 {
			break
		}
		posts = append(posts, page.Items...)
		slog.Debug("lister: fetched page", "blog_id", blogID, "page", pages, "items", len(page.Items))
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	slog.Info("lister: listed posts", "blog_id", blogID, "pages", pages, "posts", len(posts))
	return posts, nil
}

func listError(err error) error {
	switch StatusCode(err) {
	case http.StatusNotFound:
		return newError(ErrBlogNotFound, err,
			"Blog not found for this ID. Please verify the Blog ID and API key restrictions.")
	case http.StatusBadRequest:
		return newError(ErrInvalidRequest, err, "Invalid Blog ID or malformed request. Please check the ID.")
	}
	if errors.Is(err, context.Canceled) {
		return newError(ErrListFailed, err, "Failed to list posts: request canceled")
	}
	return newError(ErrListFailed, err, "Failed to list posts: %s", ErrorMessage(err))
}

func notAuthenticated() error {
	return newError(ErrNotAuthenticated, nil,
		"Google API Client is not initialized or API Key has changed. Please initialize client first.")
}

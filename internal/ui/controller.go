// Package ui holds the interactive state machine behind the web page: the
// key and blog inputs, button enablement, status messages with expiry, the
// loading flag and the rendered post list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"blogger-lister/internal/export"
	"blogger-lister/internal/keystore"
	"blogger-lister/internal/lister"
	"blogger-lister/internal/listing"
	"blogger-lister/internal/model"
)

var (
	ErrBusy            = errors.New("another operation is in progress")
	ErrMissingBlog     = errors.New("blog URL or ID is empty")
	ErrNothingToExport = errors.New("no posts to save")
	ErrKeyChanged      = errors.New("API key changed while the request was in flight")
)

// Kind classifies a status message.
type Kind string

const (
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
)

// Message is the status line.
type Message struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// Options tune timing and presentation.
type Options struct {
	MessageTTL    time.Duration // info/success messages clear after this; 0 keeps them
	AutoInitDelay time.Duration // >0 re-initialises this long after the last key edit
	Location      *time.Location
}

// State is a snapshot for rendering.
type State struct {
	Blog     string          `json:"blog"`
	Key      string          `json:"key"`
	Remember bool            `json:"remember"`
	Theme    string          `json:"theme"`
	Ready    bool            `json:"ready"`
	Loading  bool            `json:"loading"`
	Message  Message         `json:"message"`
	Buttons  Buttons         `json:"buttons"`
	Total    string          `json:"total"`
	Groups   []listing.Group `json:"groups"`
	NoPosts  bool            `json:"no_posts"`
}

// Controller owns the session-facing state of one UI. Build it once per
// process; it is safe for concurrent use.
type Controller struct {
	svc   *lister.Service
	creds *keystore.Credentials
	opts  Options

	mu               sync.Mutex
	key              string
	blog             string
	remember         bool
	rememberedOnLoad bool
	theme            string
	loading          bool
	message          Message
	msgSeq           uint64
	collection       *listing.Collection
	total            string

	msgExpiry deferred
	autoInit  deferred
}

func NewController(svc *lister.Service, creds *keystore.Credentials, opts Options) *Controller {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Controller{
		svc:   svc,
		creds: creds,
		opts:  opts,
		theme: keystore.ThemeDevice,
	}
}

// Load restores the theme and the remembered key, initialising the client
// with that key when there is one.
func (c *Controller) Load(ctx context.Context) error {
	theme, err := c.creds.Theme(ctx)
	if err != nil {
		slog.Warn("ui: load theme failed", "error", err)
	}
	key, ok, err := c.creds.Remembered(ctx)
	if err != nil {
		return fmt.Errorf("load remembered key: %w", err)
	}

	c.mu.Lock()
	c.theme = theme
	if !ok {
		c.setMessage("Please enter your Google API Key and Blog URL or ID to begin.", KindInfo)
		c.mu.Unlock()
		return nil
	}
	c.key = key
	c.remember = true
	c.rememberedOnLoad = true
	c.mu.Unlock()

	slog.Info("ui: using remembered key", "key", keystore.Mask(key))
	if err := c.InitializeClient(ctx); err != nil && !isDomainError(err) {
		return err
	}
	return nil
}

// OpenPage handles a page load carrying an optional blog query parameter.
// With a remembered key and a ready client the fetch starts immediately.
func (c *Controller) OpenPage(ctx context.Context, blogQuery string) error {
	blogQuery = strings.TrimSpace(blogQuery)
	if blogQuery == "" {
		return nil
	}
	c.mu.Lock()
	c.blog = blogQuery
	auto := c.rememberedOnLoad && c.svc.Session().Matches(c.key) && !c.loading
	c.mu.Unlock()
	if !auto {
		return nil
	}
	slog.Info("ui: auto-fetching posts", "blog", blogQuery)
	return c.FetchPosts(ctx)
}

// SetKey records an edit of the key input. A ready session for a different
// key is invalidated at once; an empty key also forgets the stored key.
func (c *Controller) SetKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = key
	if c.svc.Session().Observe(key) {
		c.setMessage(`API Key changed. Please click "Initialize API Client" to re-initialize.`, KindInfo)
	}
	if key == "" {
		c.autoInit.Cancel()
		c.remember = false
		return c.creds.Forget(ctx)
	}
	if c.opts.AutoInitDelay > 0 && !c.svc.Session().Matches(key) {
		c.autoInit.Schedule(c.opts.AutoInitDelay, func() {
			if err := c.InitializeClient(context.Background()); err != nil && !isDomainError(err) {
				slog.Warn("ui: auto initialize failed", "error", err)
			}
		})
	}
	return nil
}

// SetBlog records an edit of the blog input.
func (c *Controller) SetBlog(blog string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blog = strings.TrimSpace(blog)
}

// SetRemember toggles persistence of the current key.
func (c *Controller) SetRemember(ctx context.Context, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !on {
		c.remember = false
		if err := c.creds.Forget(ctx); err != nil {
			c.setMessage(err.Error(), KindError)
			return err
		}
		c.setMessage("API Key removed from local storage.", KindInfo)
		return nil
	}
	if c.key == "" {
		c.remember = false
		c.setMessage(`Please enter an API Key before checking "Remember API Key".`, KindError)
		return keystore.ErrEmptyKey
	}
	if err := c.creds.Remember(ctx, c.key); err != nil {
		c.setMessage(err.Error(), KindError)
		return err
	}
	c.remember = true
	c.setMessage("API Key saved to local storage.", KindSuccess)
	return nil
}

// InitializeClient authenticates with the current key input. A result that
// arrives after the key input changed is discarded.
func (c *Controller) InitializeClient(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	key := c.key
	if key == "" {
		c.setMessage("Please enter an API Key before initializing.", KindError)
		c.mu.Unlock()
		return lister.ErrMissingKey
	}
	if c.svc.Session().Matches(key) {
		c.setMessage("API Client already initialized with this key.", KindInfo)
		c.mu.Unlock()
		return nil
	}
	c.autoInit.Cancel()
	c.loading = true
	c.setProgress("Initializing API client...")
	c.mu.Unlock()

	err := c.svc.Initialize(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.key != key {
		c.svc.Session().Observe(c.key)
		c.setMessage(`API Key changed. Please click "Initialize API Client" to re-initialize.`, KindInfo)
		return ErrKeyChanged
	}
	if err != nil {
		c.setMessage(err.Error(), KindError)
		return err
	}
	c.setMessage("Google API Client ready. You can now Get All Posts.", KindSuccess)
	return nil
}

// FetchPosts resolves the blog input if needed, aggregates every post and
// replaces the displayed list.
func (c *Controller) FetchPosts(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	key, blog := c.key, c.blog
	c.collection = nil
	c.total = ""
	c.clearMessage()
	if !c.svc.Session().Matches(key) {
		c.setMessage("Please initialize the Google API Client with your API Key first.", KindError)
		c.mu.Unlock()
		return lister.ErrNotAuthenticated
	}
	if blog == "" {
		c.setMessage("Please ensure both Blog URL/ID and Google API Key are entered.", KindError)
		c.mu.Unlock()
		return ErrMissingBlog
	}
	c.loading = true
	c.setProgress("Fetching posts...")
	ref, prefixed := lister.NormalizeBlogRef(blog)
	if prefixed {
		c.blog = ref
		c.setProgress("Automatically prefixed URL with https://")
	}
	c.mu.Unlock()

	c.announce("Attempting to get Blog ID from URL...", KindInfo, !lister.IsBlogID(ref))
	blogID, err := c.svc.ResolveRef(ctx, ref, key)
	if err == nil {
		c.announce("Found Blog ID: "+blogID, KindSuccess, blogID != ref)
		var posts []model.Post
		posts, err = c.svc.ListAll(ctx, blogID, key)
		if err == nil {
			return c.finishFetch(key, posts)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.total = "Total Posts: 0"
	c.setMessage("Error: "+err.Error(), KindError)
	return err
}

func (c *Controller) finishFetch(key string, posts []model.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.key != key || !c.svc.Session().Matches(key) {
		c.setMessage("API Key changed while fetching; results were discarded.", KindInfo)
		return ErrKeyChanged
	}
	col := listing.Build(posts, c.opts.Location)
	c.collection = &col
	c.total = col.TotalLabel()
	if col.Empty() {
		c.setMessage("No posts found for the provided Blog ID/URL.", KindInfo)
		return nil
	}
	c.setMessage(fmt.Sprintf("Successfully loaded %d posts.", col.Total), KindSuccess)
	return nil
}

// ClearKey forgets the stored key, empties the key input, resets the session
// and drops the displayed list.
func (c *Controller) ClearKey(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrBusy
	}
	c.autoInit.Cancel()
	if err := c.creds.Forget(ctx); err != nil {
		c.setMessage(err.Error(), KindError)
		return err
	}
	c.key = ""
	c.remember = false
	c.svc.Session().Reset()
	c.collection = nil
	c.total = ""
	c.setMessage("API Key cleared from local storage and input field. Please re-enter to use.", KindInfo)
	return nil
}

// SetTheme persists the theme choice.
func (c *Controller) SetTheme(ctx context.Context, theme string) error {
	if err := c.creds.SetTheme(ctx, theme); err != nil {
		return err
	}
	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()
	return nil
}

// Export renders the displayed list as a standalone HTML document.
func (c *Controller) Export(now time.Time) (filename string, body []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return "", nil, ErrBusy
	}
	if c.collection == nil || c.collection.Empty() {
		c.setMessage("No posts to save. Please fetch posts first.", KindInfo)
		return "", nil, ErrNothingToExport
	}
	doc := export.Document{
		BlogRef:     c.blog,
		GeneratedAt: now.In(c.opts.Location),
		Theme:       c.theme,
		Collection:  *c.collection,
	}
	body, err = export.Bytes(doc)
	if err != nil {
		c.setMessage(err.Error(), KindError)
		return "", nil, err
	}
	filename = export.Filename(doc.BlogRef, doc.GeneratedAt)
	c.setMessage(fmt.Sprintf("List saved as %q", filename), KindSuccess)
	return filename, body, nil
}

// State returns a snapshot of everything the page shows.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess := c.svc.Session()
	hasPosts := c.collection != nil && !c.collection.Empty()
	s := State{
		Blog:     c.blog,
		Key:      c.key,
		Remember: c.remember,
		Theme:    c.theme,
		Ready:    sess.Ready(),
		Loading:  c.loading,
		Message:  c.message,
		Total:    c.total,
		NoPosts:  c.collection != nil && c.collection.Empty(),
		Buttons: ButtonStates(Inputs{
			KeyEmpty:   c.key == "",
			BlogEmpty:  c.blog == "",
			Ready:      sess.Ready(),
			KeyMatches: sess.Matches(c.key),
			HasPosts:   hasPosts,
			Loading:    c.loading,
		}),
	}
	if c.collection != nil {
		s.Groups = c.collection.Groups
	}
	return s
}

// announce sets a progress message when cond holds.
func (c *Controller) announce(text string, kind Kind, cond bool) {
	if !cond {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showMessage(text, kind, false)
}

// setMessage replaces the status line; c.mu must be held. Errors persist,
// info and success messages expire after MessageTTL.
func (c *Controller) setMessage(text string, kind Kind) {
	c.showMessage(text, kind, kind != KindError)
}

// setProgress shows an info message that stays until the running operation
// replaces it; c.mu must be held.
func (c *Controller) setProgress(text string) {
	c.showMessage(text, KindInfo, false)
}

func (c *Controller) showMessage(text string, kind Kind, expire bool) {
	c.msgSeq++
	c.message = Message{Text: text, Kind: kind}
	c.msgExpiry.Cancel()
	if !expire || c.opts.MessageTTL <= 0 {
		return
	}
	seq := c.msgSeq
	c.msgExpiry.Schedule(c.opts.MessageTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.msgSeq == seq {
			c.message = Message{}
		}
	})
}

// clearMessage empties the status line; c.mu must be held.
func (c *Controller) clearMessage() {
	c.msgSeq++
	c.message = Message{}
	c.msgExpiry.Cancel()
}

func isDomainError(err error) bool {
	var le *lister.Error
	return errors.As(err, &le) || errors.Is(err, ErrKeyChanged) || errors.Is(err, lister.ErrMissingKey)
}

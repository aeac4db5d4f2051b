package ui

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"blogger-lister/internal/blogger"
	"blogger-lister/internal/keystore"
	"blogger-lister/internal/lister"
	"blogger-lister/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu sync.Mutex

	discoverErr error
	entered     chan struct{}
	release     chan struct{}

	blog        model.Blog
	posts       []model.Post
	listErr     error
	lists       int
	listEntered chan struct{}
	listRelease chan struct{}
}

func (f *fakeRemote) Discover(ctx context.Context, key string) (blogger.Discovery, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return blogger.Discovery{Name: "blogger"}, f.discoverErr
}

func (f *fakeRemote) BlogByURL(ctx context.Context, blogURL, key string) (model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blog, nil
}

func (f *fakeRemote) ListPosts(ctx context.Context, p blogger.ListPostsParams) (blogger.PostList, error) {
	if f.listEntered != nil {
		f.listEntered <- struct{}{}
		<-f.listRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return blogger.PostList{}, f.listErr
	}
	return blogger.PostList{Items: append([]model.Post(nil), f.posts...)}, nil
}

func samplePosts() []model.Post {
	return []model.Post{
		{ID: "1", Title: "Older", URL: "http://b.example.com/older", Published: time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "Newer", URL: "https://b.example.com/newer", Published: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
	}
}

func newTestController(t *testing.T, f *fakeRemote, opts Options) (*Controller, *keystore.Credentials) {
	t.Helper()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	creds := keystore.NewCredentials(keystore.NewMemoryStore())
	return NewController(lister.NewService(f), creds, opts), creds
}

func readyController(t *testing.T, f *fakeRemote) *Controller {
	t.Helper()
	c, _ := newTestController(t, f, Options{})
	ctx := context.Background()
	require.NoError(t, c.SetKey(ctx, "key-1"))
	require.NoError(t, c.InitializeClient(ctx))
	return c
}

func TestLoadWithoutRememberedKey(t *testing.T) {
	c, _ := newTestController(t, &fakeRemote{}, Options{})
	require.NoError(t, c.Load(context.Background()))

	s := c.State()
	assert.False(t, s.Ready)
	assert.Equal(t, KindInfo, s.Message.Kind)
	assert.Contains(t, s.Message.Text, "Please enter your Google API Key")
	assert.Equal(t, keystore.ThemeDevice, s.Theme)
	assert.False(t, s.Buttons.Initialize)
}

func TestLoadInitializesRememberedKey(t *testing.T) {
	ctx := context.Background()
	c, creds := newTestController(t, &fakeRemote{}, Options{})
	require.NoError(t, creds.Remember(ctx, "saved-key"))
	require.NoError(t, creds.SetTheme(ctx, keystore.ThemeDark))

	require.NoError(t, c.Load(ctx))
	s := c.State()
	assert.True(t, s.Ready)
	assert.True(t, s.Remember)
	assert.Equal(t, "saved-key", s.Key)
	assert.Equal(t, keystore.ThemeDark, s.Theme)
	assert.Equal(t, KindSuccess, s.Message.Kind)
}

func TestLoadKeepsGoingWhenRememberedKeyIsRejected(t *testing.T) {
	ctx := context.Background()
	f := &fakeRemote{discoverErr: &blogger.APIError{StatusCode: 400, Code: 400, Message: "API key not valid"}}
	c, creds := newTestController(t, f, Options{})
	require.NoError(t, creds.Remember(ctx, "bad"))

	require.NoError(t, c.Load(ctx))
	s := c.State()
	assert.False(t, s.Ready)
	assert.Equal(t, KindError, s.Message.Kind)
	assert.Contains(t, s.Message.Text, "API key not valid")
}

func TestSetKeyInvalidatesSession(t *testing.T) {
	c := readyController(t, &fakeRemote{})
	assert.False(t, c.State().Buttons.Initialize)

	require.NoError(t, c.SetKey(context.Background(), "key-2"))
	s := c.State()
	assert.False(t, s.Ready)
	assert.Contains(t, s.Message.Text, "API Key changed")
	assert.True(t, s.Buttons.Initialize)
	assert.False(t, s.Buttons.GetPosts)
}

func TestSetKeyEmptyForgetsStoredKey(t *testing.T) {
	ctx := context.Background()
	c, creds := newTestController(t, &fakeRemote{}, Options{})
	require.NoError(t, c.SetKey(ctx, "key-1"))
	require.NoError(t, c.SetRemember(ctx, true))

	require.NoError(t, c.SetKey(ctx, "  "))
	_, ok, err := creds.Remembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.State().Remember)
}

func TestSetRememberRequiresKey(t *testing.T) {
	c, _ := newTestController(t, &fakeRemote{}, Options{})
	err := c.SetRemember(context.Background(), true)
	require.ErrorIs(t, err, keystore.ErrEmptyKey)
	s := c.State()
	assert.False(t, s.Remember)
	assert.Equal(t, KindError, s.Message.Kind)
}

func TestInitializeWithoutKey(t *testing.T) {
	c, _ := newTestController(t, &fakeRemote{}, Options{})
	err := c.InitializeClient(context.Background())
	require.ErrorIs(t, err, lister.ErrMissingKey)
	assert.Equal(t, KindError, c.State().Message.Kind)
}

func TestInitializeDiscardsResultForEditedKey(t *testing.T) {
	f := &fakeRemote{entered: make(chan struct{}), release: make(chan struct{})}
	c, _ := newTestController(t, f, Options{})
	ctx := context.Background()
	require.NoError(t, c.SetKey(ctx, "key-1"))

	done := make(chan error, 1)
	go func() { done <- c.InitializeClient(ctx) }()

	<-f.entered
	assert.True(t, c.State().Loading)
	assert.Equal(t, Buttons{}, c.State().Buttons)
	require.NoError(t, c.SetKey(ctx, "key-2"))
	close(f.release)

	require.ErrorIs(t, <-done, ErrKeyChanged)
	s := c.State()
	assert.False(t, s.Ready)
	assert.False(t, s.Loading)
	assert.Empty(t, c.svc.Session().ActiveKey())
}

func TestInitializeIgnoredWhileBusy(t *testing.T) {
	f := &fakeRemote{entered: make(chan struct{}), release: make(chan struct{})}
	c, _ := newTestController(t, f, Options{})
	ctx := context.Background()
	require.NoError(t, c.SetKey(ctx, "key-1"))

	done := make(chan error, 1)
	go func() { done <- c.InitializeClient(ctx) }()
	<-f.entered

	assert.ErrorIs(t, c.InitializeClient(ctx), ErrBusy)
	assert.ErrorIs(t, c.FetchPosts(ctx), ErrBusy)
	close(f.release)
	require.NoError(t, <-done)
	assert.True(t, c.State().Ready)
}

func TestFetchPostsRequiresInitializedClient(t *testing.T) {
	f := &fakeRemote{posts: samplePosts()}
	c, _ := newTestController(t, f, Options{})
	ctx := context.Background()
	require.NoError(t, c.SetKey(ctx, "key-1"))
	c.SetBlog("123")

	err := c.FetchPosts(ctx)
	require.ErrorIs(t, err, lister.ErrNotAuthenticated)
	assert.Zero(t, f.lists)
	assert.Contains(t, c.State().Message.Text, "initialize the Google API Client")
}

func TestFetchPostsRequiresBlog(t *testing.T) {
	c := readyController(t, &fakeRemote{})
	require.ErrorIs(t, c.FetchPosts(context.Background()), ErrMissingBlog)
	assert.Equal(t, KindError, c.State().Message.Kind)
}

func TestFetchPostsResolvesAndGroups(t *testing.T) {
	f := &fakeRemote{blog: model.Blog{ID: "42"}, posts: samplePosts()}
	c := readyController(t, f)
	c.SetBlog("b.example.com")

	require.NoError(t, c.FetchPosts(context.Background()))
	s := c.State()
	assert.Equal(t, "https://b.example.com", s.Blog)
	assert.Equal(t, "Total Posts: 2", s.Total)
	assert.Equal(t, "Successfully loaded 2 posts.", s.Message.Text)
	assert.True(t, s.Buttons.SaveHTML)
	assert.True(t, s.Buttons.GetPosts)

	require.Len(t, s.Groups, 2)
	assert.Equal(t, "March 2024", s.Groups[0].Label)
	assert.Equal(t, "February 2024", s.Groups[1].Label)
	assert.Equal(t, "https://b.example.com/older", s.Groups[1].Posts[0].URL)
}

func TestFetchPostsEmptyBlog(t *testing.T) {
	c := readyController(t, &fakeRemote{})
	c.SetBlog("777")

	require.NoError(t, c.FetchPosts(context.Background()))
	s := c.State()
	assert.True(t, s.NoPosts)
	assert.Equal(t, "Total Posts: 0", s.Total)
	assert.False(t, s.Buttons.SaveHTML)
}

func TestFetchPostsErrorResetsTotal(t *testing.T) {
	f := &fakeRemote{listErr: &blogger.APIError{StatusCode: http.StatusNotFound, Code: http.StatusNotFound}}
	c := readyController(t, f)
	c.SetBlog("777")

	err := c.FetchPosts(context.Background())
	require.ErrorIs(t, err, lister.ErrBlogNotFound)
	s := c.State()
	assert.Equal(t, "Total Posts: 0", s.Total)
	assert.Equal(t, KindError, s.Message.Kind)
	assert.True(t, strings.HasPrefix(s.Message.Text, "Error: Blog not found for this ID."))
	assert.False(t, s.Loading)
}

func TestOpenPageFetchesWithRememberedKey(t *testing.T) {
	ctx := context.Background()
	f := &fakeRemote{posts: samplePosts()}
	c, creds := newTestController(t, f, Options{})
	require.NoError(t, creds.Remember(ctx, "saved-key"))
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.OpenPage(ctx, "9001"))
	assert.Equal(t, 1, f.lists)
	assert.Equal(t, "Total Posts: 2", c.State().Total)
}

func TestOpenPageWithoutRememberedKeyOnlyFillsBlog(t *testing.T) {
	f := &fakeRemote{posts: samplePosts()}
	c := readyController(t, f)

	require.NoError(t, c.OpenPage(context.Background(), "9001"))
	assert.Zero(t, f.lists)
	assert.Equal(t, "9001", c.State().Blog)
}

func TestClearKey(t *testing.T) {
	ctx := context.Background()
	f := &fakeRemote{posts: samplePosts()}
	c := readyController(t, f)
	require.NoError(t, c.SetRemember(ctx, true))
	c.SetBlog("1")
	require.NoError(t, c.FetchPosts(ctx))

	require.NoError(t, c.ClearKey(ctx))
	s := c.State()
	assert.Empty(t, s.Key)
	assert.False(t, s.Ready)
	assert.False(t, s.Remember)
	assert.Empty(t, s.Groups)
	assert.Empty(t, s.Total)
	assert.Equal(t, Buttons{}, s.Buttons)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	c := readyController(t, &fakeRemote{blog: model.Blog{ID: "42"}, posts: samplePosts()})
	c.SetBlog("https://b.example.com/")
	require.NoError(t, c.SetTheme(ctx, keystore.ThemeLight))
	require.NoError(t, c.FetchPosts(ctx))

	name, body, err := c.Export(time.Date(2024, 4, 1, 15, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "b-example-com-Posts-List-2024-04-01.html", name)
	assert.Contains(t, string(body), "Newer")
	assert.Contains(t, string(body), "Total Posts: 2")
	assert.Equal(t, KindSuccess, c.State().Message.Kind)
}

func TestExportWithoutPosts(t *testing.T) {
	c := readyController(t, &fakeRemote{})
	_, _, err := c.Export(time.Now())
	require.ErrorIs(t, err, ErrNothingToExport)
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	c, _ := newTestController(t, &fakeRemote{}, Options{})
	require.ErrorIs(t, c.SetTheme(context.Background(), "sepia"), keystore.ErrInvalidTheme)
	assert.Equal(t, keystore.ThemeDevice, c.State().Theme)
}

func TestInfoMessagesExpire(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, &fakeRemote{}, Options{MessageTTL: 20 * time.Millisecond})
	require.NoError(t, c.SetKey(ctx, "key-1"))
	require.NoError(t, c.SetRemember(ctx, true))
	assert.Equal(t, KindSuccess, c.State().Message.Kind)

	require.Eventually(t, func() bool {
		return c.State().Message == Message{}
	}, time.Second, 5*time.Millisecond)
}

func TestErrorMessagesPersist(t *testing.T) {
	c, _ := newTestController(t, &fakeRemote{}, Options{MessageTTL: 10 * time.Millisecond})
	require.Error(t, c.SetRemember(context.Background(), true))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, KindError, c.State().Message.Kind)
}

func TestAutoInitializeAfterKeyEdit(t *testing.T) {
	c, _ := newTestController(t, &fakeRemote{}, Options{AutoInitDelay: 10 * time.Millisecond})
	require.NoError(t, c.SetKey(context.Background(), "key-1"))

	require.Eventually(t, func() bool {
		return c.State().Ready
	}, time.Second, 5*time.Millisecond)
}

func blockingLister() *fakeRemote {
	return &fakeRemote{
		posts:       samplePosts(),
		listEntered: make(chan struct{}),
		listRelease: make(chan struct{}),
	}
}

func TestFetchPostsDiscardsResultForEditedKey(t *testing.T) {
	f := blockingLister()
	c := readyController(t, f)
	c.SetBlog("123")
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.FetchPosts(ctx) }()
	<-f.listEntered
	require.NoError(t, c.SetKey(ctx, "key-2"))
	close(f.listRelease)

	require.ErrorIs(t, <-done, ErrKeyChanged)
	s := c.State()
	assert.Empty(t, s.Groups)
	assert.Empty(t, s.Total)
	assert.False(t, s.Loading)
	assert.False(t, s.Buttons.SaveHTML)
}

func TestFetchPostsDiscardsResultWhenKeyEditedAndRestored(t *testing.T) {
	f := blockingLister()
	c := readyController(t, f)
	c.SetBlog("123")
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.FetchPosts(ctx) }()
	<-f.listEntered
	require.NoError(t, c.SetKey(ctx, "key-2"))
	require.NoError(t, c.SetKey(ctx, "key-1"))
	close(f.listRelease)

	require.ErrorIs(t, <-done, ErrKeyChanged)
	s := c.State()
	assert.False(t, s.Ready)
	assert.Empty(t, s.Groups)
}

func TestProgressMessageOutlivesTTL(t *testing.T) {
	f := blockingLister()
	c, _ := newTestController(t, f, Options{MessageTTL: 10 * time.Millisecond})
	ctx := context.Background()
	require.NoError(t, c.SetKey(ctx, "key-1"))
	require.NoError(t, c.InitializeClient(ctx))
	c.SetBlog("123")

	done := make(chan error, 1)
	go func() { done <- c.FetchPosts(ctx) }()
	<-f.listEntered

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, Message{Text: "Fetching posts...", Kind: KindInfo}, c.State().Message)

	close(f.listRelease)
	require.NoError(t, <-done)
	assert.Equal(t, "Total Posts: 2", c.State().Total)
}

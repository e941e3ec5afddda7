package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"hdnotes-cli/internal/model"
)

// TokenCache persists the access token between processes so a session
// can be restored on the next start. Implemented by internal/store.
type TokenCache interface {
	LoadSession() (*model.Session, error)
	SaveSession(*model.Session) error
	ClearSession() error
}

// HTTPClient talks to a GoTrue/PostgREST-shaped API. It owns the
// ambient session: VerifyOTP, SignOut and GetSession update it and
// notify registered listeners synchronously.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   TokenCache

	mu        sync.Mutex
	session   *model.Session
	listeners map[int]func(*model.Session)
	nextID    int
}

// NewHTTPClient builds a client for the given API base URL and anon key.
// cache may be nil (no cross-process session restore).
func NewHTTPClient(baseURL, apiKey string, cache TokenCache) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:    strings.TrimSpace(apiKey),
		http:      &http.Client{},
		cache:     cache,
		listeners: map[int]func(*model.Session){},
	}
}

func (c *HTTPClient) SendOTP(ctx context.Context, email string) error {
	body := map[string]any{"email": email, "create_user": true}
	return c.doJSON(ctx, http.MethodPost, "/auth/v1/otp", body, nil)
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, code string) (*model.Session, error) {
	body := map[string]any{"type": "email", "email": email, "token": code}
	var resp struct {
		AccessToken string  `json:"access_token"`
		User        apiUser `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/verify", body, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return nil, Errorf("verification succeeded but no session was returned")
	}
	sess := &model.Session{
		AccessToken: resp.AccessToken,
		Identity:    resp.User.identity(),
		IssuedAt:    time.Now().UTC(),
	}
	c.setSession(sess)
	return sess, nil
}

// GetSession restores a cached session, revalidating the token against
// the provider before trusting it. A stale or missing token yields
// (nil, nil): absence, not an error.
func (c *HTTPClient) GetSession(ctx context.Context) (*model.Session, error) {
	c.mu.Lock()
	cur := c.session
	c.mu.Unlock()
	if cur != nil {
		return cur, nil
	}
	if c.cache == nil {
		return nil, nil
	}
	cached, err := c.cache.LoadSession()
	if err != nil || cached == nil {
		return nil, nil
	}

	var user apiUser
	if err := c.doJSONAuthed(ctx, http.MethodGet, "/auth/v1/user", cached.AccessToken, nil, &user); err != nil {
		// Token no longer accepted; drop the cache so we don't retry it
		// on every start.
		_ = c.cache.ClearSession()
		return nil, nil
	}
	cached.Identity = user.identity()
	c.setSession(cached)
	return cached, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	cur := c.session
	c.mu.Unlock()
	if cur != nil {
		// Best-effort server-side invalidation; the local session is
		// cleared regardless so the user is never stuck signed in.
		_ = c.doJSONAuthed(ctx, http.MethodPost, "/auth/v1/logout", cur.AccessToken, nil, nil)
	}
	c.setSession(nil)
	return nil
}

func (c *HTTPClient) OnSessionChange(fn func(*model.Session)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *HTTPClient) setSession(sess *model.Session) {
	c.mu.Lock()
	c.session = sess
	fns := make([]func(*model.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	if c.cache != nil {
		if sess != nil {
			_ = c.cache.SaveSession(sess)
		} else {
			_ = c.cache.ClearSession()
		}
	}
	for _, fn := range fns {
		fn(sess)
	}
}

func (c *HTTPClient) ListNotes(ctx context.Context, ownerID string) ([]model.Note, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("owner_id", "eq."+ownerID)
	q.Set("order", "created_at.desc")
	var rows []apiNote
	if err := c.doJSONSessionAuthed(ctx, http.MethodGet, "/rest/v1/notes?"+q.Encode(), nil, &rows); err != nil {
		return nil, err
	}
	notes := make([]model.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, r.note())
	}
	return notes, nil
}

func (c *HTTPClient) InsertNote(ctx context.Context, ownerID, title, content string) (model.Note, error) {
	body := map[string]any{"title": title, "content": content, "owner_id": ownerID}
	var rows []apiNote
	if err := c.doJSONSessionAuthed(ctx, http.MethodPost, "/rest/v1/notes?select=*", body, &rows); err != nil {
		return model.Note{}, err
	}
	if len(rows) == 0 {
		// Insert without representation still succeeded; the caller
		// reloads the list anyway.
		return model.Note{Title: title, Content: content, OwnerID: ownerID}, nil
	}
	return rows[0].note(), nil
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id, ownerID string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("owner_id", "eq."+ownerID)
	return c.doJSONSessionAuthed(ctx, http.MethodDelete, "/rest/v1/notes?"+q.Encode(), nil, nil)
}

// apiUser is the provider's user shape; only the fields we read.
type apiUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		FullName string `json:"full_name"`
		Name     string `json:"name"`
	} `json:"user_metadata"`
}

func (u apiUser) identity() model.Identity {
	return model.Identity{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.Metadata.FullName,
		PreferredName: u.Metadata.Name,
	}
}

type apiNote struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (n apiNote) note() model.Note {
	return model.Note{ID: n.ID, Title: n.Title, Content: n.Content, OwnerID: n.OwnerID, CreatedAt: n.CreatedAt}
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, "", body, out)
}

func (c *HTTPClient) doJSONAuthed(ctx context.Context, method, path, token string, body, out any) error {
	return c.do(ctx, method, path, token, body, out)
}

// doJSONSessionAuthed uses the current ambient session's token. Data
// calls require a session; reaching here without one is a caller bug
// surfaced as a provider error rather than a panic.
func (c *HTTPClient) doJSONSessionAuthed(ctx context.Context, method, path string, body, out any) error {
	c.mu.Lock()
	cur := c.session
	c.mu.Unlock()
	if cur == nil {
		return Errorf("not signed in")
	}
	return c.do(ctx, method, path, cur.AccessToken, body, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method == http.MethodPost && strings.HasPrefix(path, "/rest/") {
		// Ask PostgREST to echo the inserted row back.
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Errorf(errorMessage(raw, resp.StatusCode))
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// errorMessage extracts the human-readable message from a provider
// error body. The API uses several field names depending on the
// subsystem; fall back to the HTTP status when none are present.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, s := range []string{body.Message, body.Msg, body.ErrorDescription} {
			if strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return fmt.Sprintf("provider returned status %d", status)
}

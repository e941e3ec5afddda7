package notes

import (
	"context"

	"hdnotes-cli/internal/model"
	"hdnotes-cli/internal/provider"
	"hdnotes-cli/internal/session"
)

// Client executes controller effects against the providers. Every data
// operation is scoped to the session manager's current identity; a
// missing session is a hard error, not a fallback to unscoped access.
type Client struct {
	sess *session.Manager
	data provider.Data
	auth provider.Auth
}

func NewClient(sess *session.Manager, data provider.Data, auth provider.Auth) *Client {
	return &Client{sess: sess, data: data, auth: auth}
}

func (c *Client) ownerID() (string, error) {
	id := c.sess.Identity()
	if id == nil {
		return "", provider.Errorf("not signed in")
	}
	return id.ID, nil
}

// List fetches all notes owned by the current identity, newest first.
func (c *Client) List(ctx context.Context) ([]model.Note, error) {
	owner, err := c.ownerID()
	if err != nil {
		return nil, err
	}
	return c.data.ListNotes(ctx, owner)
}

// Create validates the draft locally, then inserts with the owner
// forced to the current identity.
func (c *Client) Create(ctx context.Context, title, content string) (model.Note, error) {
	if err := ValidateDraft(title, content); err != nil {
		return model.Note{}, err
	}
	owner, err := c.ownerID()
	if err != nil {
		return model.Note{}, err
	}
	return c.data.InsertNote(ctx, owner, title, content)
}

// Delete removes one note, constrained to both the id and the current
// identity as owner.
func (c *Client) Delete(ctx context.Context, id string) error {
	owner, err := c.ownerID()
	if err != nil {
		return err
	}
	return c.data.DeleteNote(ctx, id, owner)
}

// SignOut delegates to the provider; local teardown happens via the
// session manager's change notification.
func (c *Client) SignOut(ctx context.Context) error {
	return c.auth.SignOut(ctx)
}

// Run performs one effect and returns the event carrying its result.
// A successful SignOut yields no event (the router reacts to the
// session change); a failed one comes back as SignedOut.
func (c *Client) Run(ctx context.Context, eff Effect) Event {
	switch eff := eff.(type) {
	case List:
		ns, err := c.List(ctx)
		return Loaded{Notes: ns, Err: err}
	case Insert:
		_, err := c.Create(ctx, eff.Title, eff.Content)
		return Created{Err: err}
	case Delete:
		err := c.Delete(ctx, eff.ID)
		return Deleted{ID: eff.ID, Err: err}
	case SignOut:
		if err := c.SignOut(ctx); err != nil {
			return SignedOut{Err: err}
		}
		return nil
	}
	return nil
}

package datastores

import (
	"context"
	"errors"
)

type (
	Contact struct {
		ID    ContactID `json:"id"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
	}
)

type ContactsStore interface {
	Create(ctx context.Context, name, email string) (*Contact, error)
	List(context.Context) ([]*Contact, error)
	Get(context.Context, ContactID) (*Contact, error)
}

// Input limits, in characters, for new contacts.
const (
	MaxNameLength  = 200
	MaxEmailLength = 320
)

var (
	ErrObjectNotFound = errors.New("store: object not found")
	ErrIO             = errors.New("store: i/o error")
	ErrFormat         = errors.New("store: malformed contacts file")
)

// AddContact appends a new contact with a fresh random id to contacts
// and returns the grown slice with the created contact.
// Name and email are stored as given.
func AddContact(contacts []*Contact, name, email string) ([]*Contact, *Contact) {
	c := &Contact{ID: newContactID(), Name: name, Email: email}
	return append(contacts, c), c
}

// validate checks the invariants every stored contact must hold.
func (c *Contact) validate() error {
	switch {
	case c == nil:
		return errors.New("null record")
	case c.ID.IsZero():
		return errors.New("missing id")
	case c.Name == "":
		return errors.New("missing name")
	case c.Email == "":
		return errors.New("missing email")
	}
	return nil
}

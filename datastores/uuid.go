package datastores

import (
	"errors"

	"github.com/google/uuid"
)

// ContactID is a random [uuid.UUID] that marshals to and from its
// canonical text form (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx).
type ContactID struct{ uuid.UUID }

var (
	errNilContactID          = errors.New("nil uuid")
	errNonCanonicalContactID = errors.New("uuid not in canonical lowercase form")
)

func newContactID() ContactID { return ContactID{uuid.Must(uuid.NewRandom())} }

// ParseContactID parses s as a [ContactID]. Only the canonical
// lowercase form is accepted and the nil UUID is rejected.
func ParseContactID(s string) (ContactID, error) {
	var id ContactID
	err := id.UnmarshalText([]byte(s))
	return id, err
}

// IsZero reports whether id is the nil UUID.
func (id ContactID) IsZero() bool { return id.UUID == uuid.Nil }

// AppendText implements [encoding.TextAppender].
func (id ContactID) AppendText(b []byte) ([]byte, error) {
	return append(b, id.String()...), nil
}

// MarshalText implements [encoding.TextMarshaler].
func (id ContactID) MarshalText() ([]byte, error) {
	return id.AppendText(nil)
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (id *ContactID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	if u.String() != string(b) {
		return errNonCanonicalContactID
	}
	if u == uuid.Nil {
		return errNilContactID
	}
	id.UUID = u
	return nil
}

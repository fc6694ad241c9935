package datastores

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddContact(t *testing.T) {
	contacts := []*Contact{}

	contacts, c := AddContact(contacts, "Alice", "alice@example.com")
	require.Len(t, contacts, 1)
	assert.Same(t, c, contacts[0])
	assert.False(t, c.ID.IsZero())
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, "alice@example.com", c.Email)
	assert.EqualValues(t, 4, c.ID.Version())
}

func TestAddContactUniqueIDs(t *testing.T) {
	var contacts []*Contact
	seen := make(map[ContactID]struct{})
	for range 1000 {
		var c *Contact
		contacts, c = AddContact(contacts, "x", "y")
		_, dup := seen[c.ID]
		require.False(t, dup, "duplicate id %s", c.ID)
		seen[c.ID] = struct{}{}
	}
	assert.Len(t, contacts, 1000)
}

func TestAddContactNoFormatValidation(t *testing.T) {
	_, c := AddContact(nil, "  spaced  ", "not an email")
	assert.Equal(t, "  spaced  ", c.Name)
	assert.Equal(t, "not an email", c.Email)
}

func TestParseContactID(t *testing.T) {
	id := newContactID()

	parsed, err := ParseContactID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	text, err := parsed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, id.String(), string(text))

	_, err = ParseContactID("")
	require.Error(t, err)
	_, err = ParseContactID("00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	_, err = ParseContactID("xyz")
	require.Error(t, err)

	for _, s := range []string{
		strings.ToUpper(id.String()),
		"{" + id.String() + "}",
		"urn:uuid:" + id.String(),
		strings.ReplaceAll(id.String(), "-", ""),
	} {
		_, err = ParseContactID(s)
		assert.Error(t, err, s)
	}
}

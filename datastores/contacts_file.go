package datastores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

const contactsFileMode = 0o600

// ContactsFile implements [ContactsStore] over a JSON file holding an
// array of [Contact]. Every operation reads the whole file and mutations
// rewrite it whole.
type ContactsFile struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ ContactsStore = (*ContactsFile)(nil)

func NewContactsFile(path string, logger *slog.Logger) *ContactsFile {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContactsFile{path: path, logger: logger.With("file", path)}
}

// Path returns the location of the contacts file.
func (s *ContactsFile) Path() string { return s.path }

// Load reads all contacts in file order. A missing file yields an empty
// collection. Errors wrap [ErrIO] or [ErrFormat].
func (s *ContactsFile) Load(ctx context.Context) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the file content with contacts. The new content is
// written to a temporary file which is then renamed over the target.
// Errors wrap [ErrIO].
func (s *ContactsFile) Save(ctx context.Context, contacts []*Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, contacts)
}

func (s *ContactsFile) Create(ctx context.Context, name, email string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	contacts, c := AddContact(contacts, name, email)
	if err := s.save(ctx, contacts); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactsFile) List(ctx context.Context) ([]*Contact, error) {
	return s.Load(ctx)
}

func (s *ContactsFile) Get(ctx context.Context, id ContactID) (*Contact, error) {
	contacts, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrObjectNotFound
}

func (s *ContactsFile) load(ctx context.Context) ([]*Contact, error) {
	b, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.LogAttrs(ctx, slog.LevelDebug, "contacts file absent, starting empty")
		return []*Contact{}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	contacts, err := decodeContacts(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, s.path, err)
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "contacts loaded", slog.Int("count", len(contacts)))
	return contacts, nil
}

func (s *ContactsFile) save(ctx context.Context, contacts []*Contact) error {
	if contacts == nil {
		contacts = []*Contact{}
	}
	b, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, s.path, err)
	}
	b = append(b, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	if err := writeFileAtomic(s.path, b); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "contacts saved", slog.Int("count", len(contacts)))
	return nil
}

// writeFileAtomic replaces path with b through a renamed temporary file.
// The result is always mode 0600, whatever the mode of a replaced file.
func writeFileAtomic(path string, b []byte) error {
	t, err := renameio.NewPendingFile(path, renameio.WithStaticPermissions(contactsFileMode))
	if err != nil {
		return err
	}
	defer t.Cleanup() //nolint: errcheck // no-op once replaced

	if _, err := t.Write(b); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}

// decodeContacts parses a JSON array of contacts. Record keys must be
// exactly id, name and email; trailing data and records that break
// [Contact.validate] are rejected.
func decodeContacts(b []byte) ([]*Contact, error) {
	dec := json.NewDecoder(bytes.NewReader(b))

	var records []map[string]json.RawMessage
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errors.New("not a json array")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after json array")
	}

	contacts := make([]*Contact, 0, len(records))
	for i, record := range records {
		c, err := decodeContact(record)
		if err == nil {
			err = c.validate()
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func decodeContact(record map[string]json.RawMessage) (*Contact, error) {
	if record == nil {
		return nil, nil
	}
	c := new(Contact)
	for key, raw := range record {
		var dst any
		switch key {
		case "id":
			dst = &c.ID
		case "name":
			dst = &c.Name
		case "email":
			dst = &c.Email
		default:
			return nil, fmt.Errorf("unknown field %q", key)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
	}
	return c, nil
}

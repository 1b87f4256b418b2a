package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/folio-cli/internal/dataurl"
)

// Project is one portfolio entry. FileData and Filename are either both set
// or both empty.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Filename    string    `json:"filename"`
	FileData    string    `json:"fileData,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasFile reports whether the project carries an attached file.
func (p Project) HasFile() bool { return p.FileData != "" }

// Store persists the full project collection. Load never fails: a missing or
// unreadable slot yields an empty collection.
type Store interface {
	Load(ctx context.Context) []Project
	Save(ctx context.Context, projects []Project) error
}

// CheckedLoader is implemented by stores that can tell a slot which is
// present but failed to read apart from one that is absent or corrupt.
// LoadChecked returns an empty collection and a non-nil error only in the
// first case.
type CheckedLoader interface {
	LoadChecked(ctx context.Context) ([]Project, error)
}

// StoreUnavailableError is returned by mutations on a Repository whose
// collection could not be read when it was opened.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return "project store unavailable, refusing to overwrite: " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// NewProject is the input to Repository.Create.
type NewProject struct {
	Title       string `validate:"required"`
	Description string
	File        *Attachment
}

// Attachment is a named byte source read once during Create.
type Attachment struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileAttachment attaches the file at path under its base name.
func FileAttachment(path string) *Attachment {
	return &Attachment{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesAttachment attaches an in-memory payload.
func BytesAttachment(name string, data []byte) *Attachment {
	return &Attachment{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(data))), nil
		},
	}
}

func (a *Attachment) encode() (string, error) {
	if a.Open == nil {
		return "", &dataurl.FileReadError{Name: a.Name, Err: errors.New("no byte source")}
	}
	rc, err := a.Open()
	if err != nil {
		return "", &dataurl.FileReadError{Name: a.Name, Err: err}
	}
	defer rc.Close()
	return dataurl.Encode(a.Name, rc)
}

// ValidationError is returned when input is rejected before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", strings.ToLower(e.Field), e.Reason)
}

// ErrDeleteDeclined is returned by Delete when the confirmation gate says no.
var ErrDeleteDeclined = errors.New("delete not confirmed")

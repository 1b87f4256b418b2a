package project

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Confirmer gates a deletion. Returning false cancels it.
type Confirmer func(id string) bool

// Confirmed is a Confirmer that always agrees.
func Confirmed(string) bool { return true }

// Repository is the in-memory working copy of the collection and the only
// writer to its Store. Every mutation saves the whole collection.
type Repository struct {
	mu       sync.Mutex
	store    Store
	projects []Project
	loadErr  error
	lastID   int64
	now      func() time.Time
	validate *validator.Validate
}

// Open loads the collection from store and writes it straight back, so a
// fresh slot is initialized with an empty collection. When the store reports
// a read failure the write-back is skipped and the Repository stays
// read-only, so the persisted collection survives.
func Open(ctx context.Context, store Store) (*Repository, error) {
	return OpenWithClock(ctx, store, time.Now)
}

// OpenWithClock is Open with an injectable clock (used in tests).
func OpenWithClock(ctx context.Context, store Store, now func() time.Time) (*Repository, error) {
	if store == nil {
		return nil, errors.New("project store is nil")
	}
	if now == nil {
		now = time.Now
	}
	r := &Repository{
		store:    store,
		now:      now,
		validate: validator.New(),
	}
	if cl, ok := store.(CheckedLoader); ok {
		r.projects, r.loadErr = cl.LoadChecked(ctx)
	} else {
		r.projects = store.Load(ctx)
	}
	if r.projects == nil {
		r.projects = []Project{}
	}
	for _, p := range r.projects {
		if n, err := strconv.ParseInt(p.ID, 10, 64); err == nil && n > r.lastID {
			r.lastID = n
		}
	}
	if r.loadErr != nil {
		return r, nil
	}
	if err := store.Save(ctx, r.projects); err != nil {
		return nil, err
	}
	return r, nil
}

// Unavailable returns the read failure seen on open, or nil.
func (r *Repository) Unavailable() error {
	if r.loadErr == nil {
		return nil
	}
	return &StoreUnavailableError{Err: r.loadErr}
}

// Create validates the input, encodes the optional attachment and prepends
// the new project. Nothing changes when validation or the file read fails.
func (r *Repository) Create(ctx context.Context, in NewProject) (Project, error) {
	if err := r.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Project{}, &ValidationError{Field: verrs[0].Field(), Reason: "is " + verrs[0].Tag()}
		}
		return Project{}, err
	}
	var filename, fileData string
	if in.File != nil {
		if in.File.Name == "" {
			return Project{}, &ValidationError{Field: "File", Reason: "attachment has no name"}
		}
		payload, err := in.File.encode()
		if err != nil {
			return Project{}, err
		}
		filename, fileData = in.File.Name, payload
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Unavailable(); err != nil {
		return Project{}, err
	}
	now := r.now().UTC()
	p := Project{
		ID:          r.nextID(now),
		Title:       in.Title,
		Description: in.Description,
		Filename:    filename,
		FileData:    fileData,
		CreatedAt:   now,
	}
	prev := r.projects
	next := make([]Project, 0, len(prev)+1)
	next = append(next, p)
	next = append(next, prev...)
	if err := r.store.Save(ctx, next); err != nil {
		return Project{}, err
	}
	r.projects = next
	return p, nil
}

// nextID derives the id from the creation time in milliseconds, bumped past
// the last issued id when two creations land in the same millisecond.
func (r *Repository) nextID(now time.Time) string {
	id := now.UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return strconv.FormatInt(id, 10)
}

// List returns a copy of the collection, newest first.
func (r *Repository) List() []Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Get looks a project up by id.
func (r *Repository) Get(id string) (Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Delete removes the project with the given id once confirm agrees. A nil
// confirm counts as declined. Unknown ids are a no-op but the collection is
// still saved. Published copies are never touched.
func (r *Repository) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm(id) {
		return false, ErrDeleteDeclined
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Unavailable(); err != nil {
		return false, err
	}
	next := make([]Project, 0, len(r.projects))
	removed := false
	for _, p := range r.projects {
		if p.ID == id {
			removed = true
			continue
		}
		next = append(next, p)
	}
	if err := r.store.Save(ctx, next); err != nil {
		return false, err
	}
	r.projects = next
	return removed, nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KaramelBytes/folio-cli/internal/logging"
	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/sirupsen/logrus"
)

// JSONStore persists the whole collection as one JSON array in a Slot.
type JSONStore struct {
	slot Slot
	log  logrus.FieldLogger
}

// NewJSONStore wraps slot. A nil logger discards warnings.
func NewJSONStore(slot Slot, log logrus.FieldLogger) *JSONStore {
	if log == nil {
		log = logging.Discard()
	}
	return &JSONStore{slot: slot, log: log}
}

// Load returns the persisted collection, or an empty one when the slot is
// missing or unreadable. Failures are logged, never returned.
func (s *JSONStore) Load(ctx context.Context) []project.Project {
	ps, _ := s.LoadChecked(ctx)
	return ps
}

// LoadChecked is Load that also returns read failures other than an empty
// slot. Missing and unparseable data still yield an empty collection and a
// nil error.
func (s *JSONStore) LoadChecked(ctx context.Context) ([]project.Project, error) {
	b, err := s.slot.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return []project.Project{}, nil
		}
		s.log.WithError(err).Warn("project store unreadable, starting empty")
		return []project.Project{}, err
	}
	var ps []project.Project
	if err := json.Unmarshal(b, &ps); err != nil {
		s.log.WithError(err).Warn("project store unparseable, starting empty")
		return []project.Project{}, nil
	}
	if ps == nil {
		ps = []project.Project{}
	}
	return ps, nil
}

// Save overwrites the slot with the full collection.
func (s *JSONStore) Save(ctx context.Context, projects []project.Project) error {
	if projects == nil {
		projects = []project.Project{}
	}
	b, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("marshal projects: %w", err)
	}
	if err := s.slot.Write(ctx, b); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	return nil
}

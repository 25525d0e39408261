package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SelectionStore persists the friend selection as a JSON file. Persistence is
// best-effort: failures are logged and never surface to the caller.
type SelectionStore struct {
	path string
	log  logrus.FieldLogger
}

func NewSelectionStore(path string, log logrus.FieldLogger) *SelectionStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SelectionStore{path: path, log: log}
}

type savedSelection struct {
	Members []uuid.UUID `json:"members"`
}

// Load returns the saved selection, or nil if none is saved or it cannot be read.
func (s *SelectionStore) Load() []uuid.UUID {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("read friend selection")
		return nil
	}
	var saved savedSelection
	if err := json.Unmarshal(b, &saved); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("decode friend selection")
		return nil
	}
	return saved.Members
}

// Save replaces the saved selection via a temp file and rename.
func (s *SelectionStore) Save(members []uuid.UUID) {
	b, err := json.Marshal(savedSelection{Members: members})
	if err != nil {
		s.log.WithError(err).Warn("encode friend selection")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("create selection dir")
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		s.log.WithError(err).WithField("path", tmp).Warn("write friend selection")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("replace friend selection")
	}
}

// ReconcileSelection drops saved ids that are no longer group members and
// returns the rest in member order. With nothing saved, or nothing left, every
// member is selected.
func ReconcileSelection(saved []uuid.UUID, members []Member) []uuid.UUID {
	want := make(map[uuid.UUID]bool, len(saved))
	for _, id := range saved {
		want[id] = true
	}
	var kept, all []uuid.UUID
	for _, m := range members {
		all = append(all, m.UserID)
		if want[m.UserID] {
			kept = append(kept, m.UserID)
		}
	}
	if len(kept) == 0 {
		return all
	}
	return kept
}

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/llm"
	"github.com/rootagent/rmk/internal/logging"
	"github.com/rootagent/rmk/internal/memory"
)

const (
	jsonlExt = ".jsonl"
	// CurrentSessionLink is the symlink to the most recently saved trajectory.
	CurrentSessionLink = "current" + jsonlExt
)

// JSONLSink keeps one <id>.jsonl file per session under dir.
type JSONLSink struct {
	dir string
	log *logging.Logger
}

// NewJSONLSink creates a sink rooted at dir. The directory is created on the
// first save.
func NewJSONLSink(dir string) *JSONLSink {
	if dir == "" {
		dir = filepath.Join(".rmk", "traj")
	}
	return &JSONLSink{dir: dir, log: logging.Global().WithPrefix("session")}
}

// Dir returns the directory trajectories are written to.
func (s *JSONLSink) Dir() string {
	return s.dir
}

// Path returns the file a session is stored in.
func (s *JSONLSink) Path(id string) string {
	return filepath.Join(s.dir, id+jsonlExt)
}

// Save overwrites the session file with msgs. The write goes through a
// temporary file so an interrupted save leaves the previous copy intact.
func (s *JSONLSink) Save(_ context.Context, id string, msgs []llm.Message) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}

	var buf bytes.Buffer
	if err := memory.WriteJSONL(&buf, msgs); err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}

	path := s.Path(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return rmkerr.SessionSaveFailed(id, err)
	}

	if err := s.updateCurrentLink(id); err != nil {
		s.log.Warn("could not update current session link", logging.SessionID(id), logging.Error(err))
	}
	s.log.Event(logging.EventSessionSave, logging.SessionID(id), logging.MessageCount(len(msgs)), logging.Path(path))
	return nil
}

// Load reads a session back. An id of "current" follows the current link.
func (s *JSONLSink) Load(_ context.Context, id string) ([]llm.Message, error) {
	if id == "current" {
		target, err := os.Readlink(filepath.Join(s.dir, CurrentSessionLink))
		if err != nil {
			return nil, rmkerr.SessionNotFound(id)
		}
		id = strings.TrimSuffix(filepath.Base(target), jsonlExt)
	}

	f, err := os.Open(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, rmkerr.SessionNotFound(id)
	}
	if err != nil {
		return nil, rmkerr.SessionLoadFailed(id, err)
	}
	defer f.Close()

	msgs, err := memory.ReadJSONL(f)
	if err != nil {
		return nil, rmkerr.SessionLoadFailed(id, err)
	}
	s.log.Event(logging.EventSessionLoad, logging.SessionID(id), logging.MessageCount(len(msgs)))
	return msgs, nil
}

// List returns stored session ids, newest first.
func (s *JSONLSink) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trajectory directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, jsonlExt) || name == CurrentSessionLink {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, jsonlExt))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Close is a no-op; files are closed after every operation.
func (s *JSONLSink) Close() error {
	return nil
}

func (s *JSONLSink) updateCurrentLink(id string) error {
	link := filepath.Join(s.dir, CurrentSessionLink)
	_ = os.Remove(link)
	return os.Symlink(id+jsonlExt, link)
}

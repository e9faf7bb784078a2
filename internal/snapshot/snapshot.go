// Package snapshot reads contestant and score fixtures from JSON or YAML
// files and seeds a store with them.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedFormat is returned for unknown file extensions or formats.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Snapshot is a point-in-time copy of the record store.
type Snapshot struct {
	Contestants []model.Contestant `json:"contestants" yaml:"contestants"`
	Scores      []model.ScoreEntry `json:"scores" yaml:"scores"`
}

// Load reads a snapshot file, picking the format from its extension.
func Load(path string) (Snapshot, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(bytes.NewReader(data), format)
}

// FormatOf maps a file extension to a format.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Decode reads a snapshot in the given format.
func Decode(r io.Reader, format string) (Snapshot, error) {
	var snap Snapshot
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode json snapshot: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
			return Snapshot{}, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return snap, nil
}

// Seed writes every contestant, then every score entry, into store.
// Entries inherit the classification of their contestant when it is
// missing.
func Seed(ctx context.Context, store repository.Store, snap Snapshot) error {
	byID := make(map[string]model.Contestant, len(snap.Contestants))
	for _, c := range snap.Contestants {
		if err := store.PutContestant(ctx, c); err != nil {
			return fmt.Errorf("seed contestant %q: %w", c.ID, err)
		}
		byID[c.ID] = c
	}
	for i, e := range snap.Scores {
		if c, ok := byID[e.ContestantID]; ok && e.Classification().IsZero() {
			e.Category, e.Level, e.Medium = c.Category, c.Level, c.Medium
		}
		if _, _, err := store.UpsertScore(ctx, e); err != nil {
			return fmt.Errorf("seed score %d (%s/%s): %w", i, e.ContestantID, e.JudgeID, err)
		}
	}
	return nil
}

// Capture reads the whole store into a snapshot.
func Capture(ctx context.Context, store repository.Store) (Snapshot, error) {
	contestants, err := store.ListContestants(ctx, repository.Filter{})
	if err != nil {
		return Snapshot{}, err
	}
	scores, err := store.ListScores(ctx, repository.Filter{})
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Contestants: contestants, Scores: scores}, nil
}

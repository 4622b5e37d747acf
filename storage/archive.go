package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/padel-tournament/models"
)

// TournamentArchive is the final export of a finished tournament.
type TournamentArchive struct {
	Tournament models.Tournament `json:"tournament"`
	Categories []CategoryArchive `json:"categories"`
	ArchivedAt time.Time         `json:"archived_at"`
}

type CategoryArchive struct {
	Category       models.Category `json:"category"`
	Pairs          []models.Pair   `json:"pairs"`
	Zones          []ZoneArchive   `json:"zones"`
	Playoffs       []models.Match  `json:"playoffs"`
	ChampionPairID *int            `json:"champion_pair_id"`
}

type ZoneArchive struct {
	Zone      models.Zone          `json:"zone"`
	Standings []models.StandingRow `json:"standings"`
}

type Archiver struct {
	store ObjectStore
	now   func() time.Time
}

func NewArchiver(store ObjectStore) *Archiver {
	return &Archiver{store: store, now: time.Now}
}

// ArchiveKey returns a fresh object key for an export of the tournament.
func ArchiveKey(tournamentID int) string {
	return fmt.Sprintf("archives/tournaments/%d/%s.json", tournamentID, uuid.NewString())
}

// Save uploads the export and returns its object key.
func (a *Archiver) Save(ctx context.Context, archive TournamentArchive) (string, error) {
	if archive.ArchivedAt.IsZero() {
		archive.ArchivedAt = a.now().UTC()
	}
	body, err := json.Marshal(archive)
	if err != nil {
		return "", fmt.Errorf("failed to encode archive of tournament %d: %w", archive.Tournament.ID, err)
	}
	key := ArchiveKey(archive.Tournament.ID)
	if _, err := a.store.Upload(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
		return "", err
	}
	return key, nil
}

func (a *Archiver) Load(ctx context.Context, key string) (*TournamentArchive, error) {
	body, err := a.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	var archive TournamentArchive
	if err := json.Unmarshal(body, &archive); err != nil {
		return nil, fmt.Errorf("failed to decode archive %s: %w", key, err)
	}
	return &archive, nil
}

func (a *Archiver) URL(key string) string {
	return a.store.GetPublicURL(key)
}

// Discard removes an export that could not be linked to its tournament.
func (a *Archiver) Discard(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

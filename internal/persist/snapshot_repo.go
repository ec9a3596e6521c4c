package persist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrCorruptSnapshot  = errors.New("snapshot checksum mismatch")
)

// SnapshotRow describes one stored snapshot without its payload.
type SnapshotRow struct {
	GameID    string
	Seq       int
	Turn      int
	Step      string
	Over      bool
	Checksum  string
	CreatedAt time.Time
}

// SnapshotStore keeps numbered snapshots per game. The checksum column is the
// SHA-256 of the stored bytes and is verified on every load.
type SnapshotStore struct {
	db *DB
}

func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func checksumOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// decodeStored verifies data against its stored checksum and decodes it.
func decodeStored(data []byte, checksum string) (*game.Snapshot, error) {
	if checksumOf(data) != checksum {
		return nil, ErrCorruptSnapshot
	}
	return game.DecodeSnapshot(data)
}

// Save stores snap as number seq of its game, replacing an existing one.
func (s *SnapshotStore) Save(ctx context.Context, seq int, snap *game.Snapshot) (*SnapshotRow, error) {
	data, err := snap.Encode()
	if err != nil {
		return nil, err
	}
	row := &SnapshotRow{
		GameID:   snap.GameID,
		Seq:      seq,
		Turn:     snap.Turn.Number,
		Step:     snap.Turn.Step.String(),
		Over:     snap.Over,
		Checksum: checksumOf(data),
	}
	err = s.db.Pool.QueryRow(ctx,
		`INSERT INTO game_snapshots (game_id, seq, turn, step, over, checksum, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (game_id, seq) DO UPDATE
		 SET turn = EXCLUDED.turn, step = EXCLUDED.step, over = EXCLUDED.over,
		     checksum = EXCLUDED.checksum, data = EXCLUDED.data, created_at = now()
		 RETURNING created_at`,
		row.GameID, row.Seq, row.Turn, row.Step, row.Over, row.Checksum, data,
	).Scan(&row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save snapshot %s/%d: %w", row.GameID, seq, err)
	}
	s.db.log.Debug("Saved snapshot",
		zap.String("game", row.GameID),
		zap.Int("seq", seq),
		zap.Int("bytes", len(data)))
	return row, nil
}

// Load returns snapshot seq of a game.
func (s *SnapshotStore) Load(ctx context.Context, gameID string, seq int) (*game.Snapshot, error) {
	var (
		data     []byte
		checksum string
	)
	err := s.db.Pool.QueryRow(ctx,
		`SELECT data, checksum FROM game_snapshots WHERE game_id = $1 AND seq = $2`,
		gameID, seq,
	).Scan(&data, &checksum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%d", ErrSnapshotNotFound, gameID, seq)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s/%d: %w", gameID, seq, err)
	}
	snap, err := decodeStored(data, checksum)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s/%d: %w", gameID, seq, err)
	}
	return snap, nil
}

// Latest returns the highest numbered snapshot of a game.
func (s *SnapshotStore) Latest(ctx context.Context, gameID string) (*game.Snapshot, int, error) {
	var (
		seq      int
		data     []byte
		checksum string
	)
	err := s.db.Pool.QueryRow(ctx,
		`SELECT seq, data, checksum FROM game_snapshots
		 WHERE game_id = $1 ORDER BY seq DESC LIMIT 1`,
		gameID,
	).Scan(&seq, &data, &checksum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %s", ErrSnapshotNotFound, gameID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load latest snapshot of %s: %w", gameID, err)
	}
	snap, err := decodeStored(data, checksum)
	if err != nil {
		return nil, 0, fmt.Errorf("load snapshot %s/%d: %w", gameID, seq, err)
	}
	return snap, seq, nil
}

// List describes every snapshot of a game in sequence order.
func (s *SnapshotStore) List(ctx context.Context, gameID string) ([]SnapshotRow, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT game_id, seq, turn, step, over, checksum, created_at
		 FROM game_snapshots WHERE game_id = $1 ORDER BY seq`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots of %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.GameID, &r.Seq, &r.Turn, &r.Step, &r.Over, &r.Checksum, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes every snapshot of a game and returns how many there were.
func (s *SnapshotStore) Delete(ctx context.Context, gameID string) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM game_snapshots WHERE game_id = $1`, gameID)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots of %s: %w", gameID, err)
	}
	return tag.RowsAffected(), nil
}

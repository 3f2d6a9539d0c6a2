package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Export writes the whole journal, oldest first, as zstd-compressed JSON
// lines. The output is self-contained and safe to move between machines.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT at, transcript, kind, action, applied, error FROM utterances ORDER BY id ASC`,
	)
	if err != nil {
		return fmt.Errorf("query history for export: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("start zstd writer: %w", err)
	}

	enc := json.NewEncoder(zw)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			zw.Close()
			return fmt.Errorf("encode history entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish history export: %w", err)
	}

	s.logger.Info("exported history", "entries", len(entries))
	return nil
}

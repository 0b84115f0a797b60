// Package corpus maintains a SQLite index over a collection of annotation
// documents. Indexing a document records its tiers and labels so label text
// can be searched across files without re-parsing them. Documents are keyed
// by path; re-indexing a path replaces its previous rows. A BLAKE3 content
// fingerprint detects unchanged documents and spares them a re-index.
package corpus

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/spokenlab/textgrid/core/codec"
	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
	"github.com/spokenlab/textgrid/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL UNIQUE,
	fingerprint TEXT NOT NULL,
	xmin        REAL NOT NULL,
	xmax        REAL NOT NULL,
	indexed_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tiers (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	class       TEXT NOT NULL,
	xmin        REAL NOT NULL,
	xmax        REAL NOT NULL,
	entry_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS labels (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	tier_id     INTEGER NOT NULL REFERENCES tiers(id) ON DELETE CASCADE,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	xmin        REAL NOT NULL,
	xmax        REAL,
	text        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_labels_text ON labels(text);
CREATE INDEX IF NOT EXISTS idx_labels_document ON labels(document_id);
`

// Index is a corpus index backed by a SQLite database.
type Index struct {
	db *sql.DB
}

// Open opens (creating if necessary) a corpus index at path. Use ":memory:"
// for a throwaway in-memory index.
func Open(path string) (*Index, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open corpus index")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create corpus schema")
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// DocumentInfo is one indexed document.
type DocumentInfo struct {
	ID          string
	Path        string
	Fingerprint string
	Xmin, Xmax  float64
	IndexedAt   time.Time
}

// LabelHit is one label matched by a corpus search.
type LabelHit struct {
	Path string
	Tier string
	// Xmax is nil for point marks.
	Xmin float64
	Xmax *float64
	Text string
}

// Add indexes g under the given path, replacing any previous index entry for
// that path. If the stored fingerprint already matches g's content the index
// is left untouched. Returns the document's corpus ID.
func (ix *Index) Add(path string, g *model.TextGrid) (string, error) {
	fp, err := codec.Fingerprint(g)
	if err != nil {
		return "", errors.Wrap(err, "fingerprint document")
	}

	var existingID, existingFP string
	err = ix.db.QueryRow("SELECT id, fingerprint FROM documents WHERE path = ?", path).
		Scan(&existingID, &existingFP)
	switch {
	case err == nil && existingFP == fp:
		return existingID, nil
	case err != nil && err != sql.ErrNoRows:
		return "", errors.Wrap(err, "look up document")
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "begin index transaction")
	}
	defer tx.Rollback()

	if existingID != "" {
		if _, err := tx.Exec("DELETE FROM documents WHERE id = ?", existingID); err != nil {
			return "", errors.Wrap(err, "drop stale document")
		}
	}

	id := uuid.NewString()
	_, err = tx.Exec(
		"INSERT INTO documents (id, path, fingerprint, xmin, xmax, indexed_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, path, fp, g.Xmin, g.Xmax, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", errors.Wrap(err, "insert document")
	}

	for _, t := range g.Tiers {
		res, err := tx.Exec(
			"INSERT INTO tiers (document_id, name, class, xmin, xmax, entry_count) VALUES (?, ?, ?, ?, ?, ?)",
			id, t.Name, t.Type.Class(), t.Xmin, t.Xmax, t.Len())
		if err != nil {
			return "", errors.Wrapf(err, "insert tier %q", t.Name)
		}
		tierID, err := res.LastInsertId()
		if err != nil {
			return "", errors.Wrap(err, "tier row id")
		}
		switch t.Type {
		case model.IntervalTier:
			for _, iv := range t.Intervals {
				if iv.Text == "" {
					continue
				}
				if _, err := tx.Exec(
					"INSERT INTO labels (tier_id, document_id, xmin, xmax, text) VALUES (?, ?, ?, ?, ?)",
					tierID, id, iv.Xmin, iv.Xmax, iv.Text); err != nil {
					return "", errors.Wrapf(err, "insert label on tier %q", t.Name)
				}
			}
		case model.PointTier:
			for _, p := range t.Points {
				if p.Mark == "" {
					continue
				}
				if _, err := tx.Exec(
					"INSERT INTO labels (tier_id, document_id, xmin, xmax, text) VALUES (?, ?, ?, NULL, ?)",
					tierID, id, p.Time, p.Mark); err != nil {
					return "", errors.Wrapf(err, "insert mark on tier %q", t.Name)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit index transaction")
	}
	return id, nil
}

// Remove drops a document (and its tiers and labels) from the index.
// Removing an unknown path is a no-op.
func (ix *Index) Remove(path string) error {
	_, err := ix.db.Exec("DELETE FROM documents WHERE path = ?", path)
	return errors.Wrap(err, "remove document")
}

// Documents lists all indexed documents ordered by path.
func (ix *Index) Documents() ([]DocumentInfo, error) {
	rows, err := ix.db.Query(
		"SELECT id, path, fingerprint, xmin, xmax, indexed_at FROM documents ORDER BY path")
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	defer rows.Close()

	var docs []DocumentInfo
	for rows.Next() {
		var d DocumentInfo
		var stamp string
		if err := rows.Scan(&d.ID, &d.Path, &d.Fingerprint, &d.Xmin, &d.Xmax, &stamp); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		d.IndexedAt, _ = time.Parse(time.RFC3339, stamp)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SearchLabels finds labels containing substr anywhere in the corpus,
// ordered by path then time.
func (ix *Index) SearchLabels(substr string) ([]LabelHit, error) {
	rows, err := ix.db.Query(`
		SELECT d.path, t.name, l.xmin, l.xmax, l.text
		FROM labels l
		JOIN tiers t ON t.id = l.tier_id
		JOIN documents d ON d.id = l.document_id
		WHERE instr(l.text, ?) > 0
		ORDER BY d.path, l.xmin`, substr)
	if err != nil {
		return nil, errors.Wrap(err, "search labels")
	}
	defer rows.Close()

	var hits []LabelHit
	for rows.Next() {
		var h LabelHit
		var xmax sql.NullFloat64
		if err := rows.Scan(&h.Path, &h.Tier, &h.Xmin, &xmax, &h.Text); err != nil {
			return nil, errors.Wrap(err, "scan label")
		}
		if xmax.Valid {
			v := xmax.Float64
			h.Xmax = &v
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

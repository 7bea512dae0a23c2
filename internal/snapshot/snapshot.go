// Package snapshot persists the cached collections to a local SQLite file
// so a later invocation can show them before, or instead of, a fetch.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"financemonkey/fm-cli/internal/fileutils"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

const (
	collectionTransactions  = "transactions"
	collectionCategories    = "categories"
	collectionEmailAccounts = "email_accounts"

	metaSavedAt = "saved_at"
	// metaCollectionPrefix marks a collection as saved; the value is its size.
	metaCollectionPrefix = "collection:"
)

// Store is the snapshot database.
type Store struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// Open creates or upgrades the snapshot at path.
func Open(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if err := fileutils.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot database: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path, logger: logger.WithField(logging.FieldFile, path)}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes every collection that holds data in st: fetched in this
// process or restored from an earlier snapshot. Other collections keep
// what was saved before.
func (s *Store) Save(ctx context.Context, st state.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveResource(ctx, tx, collectionTransactions, st.Transactions); err != nil {
		return err
	}
	if err := saveResource(ctx, tx, collectionCategories, st.Categories); err != nil {
		return err
	}
	if err := saveResource(ctx, tx, collectionEmailAccounts, st.EmailAccounts); err != nil {
		return err
	}

	if d := st.Dashboard; d.Summary != nil {
		summary, err := json.Marshal(d.Summary)
		if err != nil {
			return fmt.Errorf("encode dashboard summary: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO dashboard (id, start_date, end_date, summary) VALUES (1, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET start_date = excluded.start_date, end_date = excluded.end_date, summary = excluded.summary`,
			d.SummaryRange.StartDate, d.SummaryRange.EndDate, string(summary))
		if err != nil {
			return fmt.Errorf("save dashboard summary: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaSavedAt, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	s.logger.Debug("Snapshot saved", logging.F(logging.FieldVersion, st.Version))
	return nil
}

func saveResource[T models.Record](ctx context.Context, tx *sql.Tx, collection string, r state.Resource[T]) error {
	if !r.Fetched && !r.FromSnapshot {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO records (collection, id, position, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", collection, err)
	}
	defer stmt.Close()

	for i, item := range r.Items {
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", collection, item.Key(), err)
		}
		if _, err := stmt.ExecContext(ctx, collection, item.Key(), i, string(payload)); err != nil {
			return fmt.Errorf("save %s %s: %w", collection, item.Key(), err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaCollectionPrefix+collection, strconv.Itoa(len(r.Items)))
	if err != nil {
		return fmt.Errorf("mark %s saved: %w", collection, err)
	}
	return nil
}

// Load returns the saved collections. ok is false when nothing was ever
// saved or the snapshot was cleared.
func (s *Store) Load(ctx context.Context) (st state.State, ok bool, err error) {
	if _, ok, err = s.SavedAt(ctx); err != nil || !ok {
		return st, ok, err
	}

	if st.Transactions.Items, err = loadCollection[models.Transaction](ctx, s.db, collectionTransactions); err != nil {
		return st, false, err
	}
	if st.Categories.Items, err = loadCollection[models.Category](ctx, s.db, collectionCategories); err != nil {
		return st, false, err
	}
	if st.EmailAccounts.Items, err = loadCollection[models.EmailAccount](ctx, s.db, collectionEmailAccounts); err != nil {
		return st, false, err
	}

	var start, end, summary string
	err = s.db.QueryRowContext(ctx, `SELECT start_date, end_date, summary FROM dashboard WHERE id = 1`).Scan(&start, &end, &summary)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return st, false, fmt.Errorf("load dashboard summary: %w", err)
	default:
		var decoded models.DashboardSummary
		if err := json.Unmarshal([]byte(summary), &decoded); err != nil {
			return st, false, fmt.Errorf("decode dashboard summary: %w", err)
		}
		st.Dashboard.Summary = &decoded
		st.Dashboard.DateRange = models.DateRange{StartDate: start, EndDate: end}
		st.Dashboard.SummaryRange = st.Dashboard.DateRange
	}
	return st, true, nil
}

// loadCollection returns nil for a collection that was never saved and a
// non-nil, possibly empty, slice for one that was.
func loadCollection[T models.Record](ctx context.Context, db *sql.DB, collection string) ([]T, error) {
	var count string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaCollectionPrefix+collection).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s marker: %w", collection, err)
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM records WHERE collection = ? ORDER BY position`, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var item T
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return items, nil
}

// SavedAt returns when the snapshot was last written.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaSavedAt).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load snapshot time: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse snapshot time %q: %w", value, err)
	}
	return t, true, nil
}

// Clear deletes everything saved.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"records", "dashboard", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	s.logger.Debug("Snapshot cleared")
	return nil
}

// Persist saves the tree after every commit that changes a collection
// while a user is signed in, and clears the snapshot when the session
// ends.
func (s *Store) Persist(tree *state.Tree) (unsubscribe func()) {
	last := tree.GetState()
	return tree.Subscribe(func(c state.Commit) {
		prev := last
		last = c.State

		ctx := context.Background()
		if prev.Auth.Authenticated && !c.State.Auth.Authenticated {
			if err := s.Clear(ctx); err != nil {
				s.logger.WithError(err).Warn("Failed to clear snapshot")
			}
			return
		}
		if c.Action == state.ActionHydrate || !c.State.Auth.Authenticated || !collectionsChanged(prev, c.State) {
			return
		}
		if err := s.Save(ctx, c.State); err != nil {
			s.logger.WithError(err).Warn("Failed to save snapshot", logging.F(logging.FieldAction, c.Action))
		}
	})
}

// collectionsChanged relies on reducers rebuilding a slice whenever they
// change it.
func collectionsChanged(a, b state.State) bool {
	return !sameSlice(a.Transactions.Items, b.Transactions.Items) ||
		!sameSlice(a.Categories.Items, b.Categories.Items) ||
		!sameSlice(a.EmailAccounts.Items, b.EmailAccounts.Items) ||
		a.Dashboard.Summary != b.Dashboard.Summary
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

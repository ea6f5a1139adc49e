package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ventilios/tenantscan/internal/flatten"
	"github.com/ventilios/tenantscan/internal/scan"
)

// Inventory persists workspace and dataset flat records plus a run summary
// row to Postgres, keyed by entity id so repeated runs upsert in place.
type Inventory struct {
	db *pgxpool.Pool
}

// NewInventory connects to Postgres and ensures the schema exists.
func NewInventory(ctx context.Context, dsn string) (*Inventory, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("inventory: connect: %w", err)
	}

	inv := &Inventory{db: db}
	if err := inv.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("inventory: ensure schema: %w", err)
	}
	return inv, nil
}

// Close releases the connection pool.
func (i *Inventory) Close() {
	i.db.Close()
}

func (i *Inventory) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_runs (
		run_id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		stats JSONB NOT NULL DEFAULT '{}',
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS workspaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		type TEXT,
		state TEXT,
		is_on_dedicated_capacity BOOLEAN,
		capacity_id TEXT,
		report_count INT,
		dataset_count INT,
		last_run_id TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		configured_by TEXT,
		content_provider_type TEXT,
		table_count INT,
		has_schema_data BOOLEAN,
		refresh_outcome TEXT,
		last_refresh_status TEXT,
		last_run_id TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := i.db.Exec(ctx, schema)
	return err
}

// Record upserts the run summary and every workspace and dataset row.
func (i *Inventory) Record(ctx context.Context, stats *scan.Stats, res *flatten.Result) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("inventory: marshal stats: %w", err)
	}

	_, err = i.db.Exec(ctx, `
		INSERT INTO scan_runs (run_id, started_at, finished_at, stats)
		VALUES ($1, NULLIF($2, '')::timestamptz, NULLIF($3, '')::timestamptz, $4)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			stats = EXCLUDED.stats`,
		stats.RunID, stats.StartedAt, stats.FinishedAt, statsJSON)
	if err != nil {
		return fmt.Errorf("inventory: record run: %w", err)
	}

	for _, rec := range res.Get(flatten.FamilyWorkspaces).Records {
		_, err := i.db.Exec(ctx, `
			INSERT INTO workspaces
				(id, name, type, state, is_on_dedicated_capacity, capacity_id,
				 report_count, dataset_count, last_run_id, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				type = EXCLUDED.type,
				state = EXCLUDED.state,
				is_on_dedicated_capacity = EXCLUDED.is_on_dedicated_capacity,
				capacity_id = EXCLUDED.capacity_id,
				report_count = EXCLUDED.report_count,
				dataset_count = EXCLUDED.dataset_count,
				last_run_id = EXCLUDED.last_run_id,
				updated_at = NOW()`,
			rec["workspaceId"], rec["workspaceName"], rec["type"], rec["state"],
			rec["isOnDedicatedCapacity"], rec["capacityId"],
			rec["reportCount"], rec["datasetCount"], stats.RunID)
		if err != nil {
			return fmt.Errorf("inventory: upsert workspace %v: %w", rec["workspaceId"], err)
		}
	}

	for _, rec := range res.Get(flatten.FamilyDatasets).Records {
		_, err := i.db.Exec(ctx, `
			INSERT INTO datasets
				(id, workspace_id, name, configured_by, content_provider_type,
				 table_count, has_schema_data, refresh_outcome, last_refresh_status,
				 last_run_id, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (id) DO UPDATE SET
				workspace_id = EXCLUDED.workspace_id,
				name = EXCLUDED.name,
				configured_by = EXCLUDED.configured_by,
				content_provider_type = EXCLUDED.content_provider_type,
				table_count = EXCLUDED.table_count,
				has_schema_data = EXCLUDED.has_schema_data,
				refresh_outcome = EXCLUDED.refresh_outcome,
				last_refresh_status = EXCLUDED.last_refresh_status,
				last_run_id = EXCLUDED.last_run_id,
				updated_at = NOW()`,
			rec["datasetId"], rec["workspaceId"], rec["datasetName"],
			rec["configuredBy"], rec["contentProviderType"],
			rec["tableCount"], rec["hasSchemaData"],
			rec["refreshOutcome"], rec["lastRefreshStatus"], stats.RunID)
		if err != nil {
			return fmt.Errorf("inventory: upsert dataset %v: %w", rec["datasetId"], err)
		}
	}

	return nil
}

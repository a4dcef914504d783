package orders

// schemaVersion tracks the database layout. Bump it when tables or columns
// change; existing databases are migrated in place by initSchema.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS listings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    address TEXT NOT NULL,
    ops_status TEXT NOT NULL DEFAULT 'pending',
    is_rush INTEGER NOT NULL DEFAULT 0,
    scheduled_at TEXT,
    updated_at TEXT NOT NULL,
    delivered_at TEXT,
    editing_started_at TEXT,
    editing_completed_at TEXT,
    photographer_id INTEGER,
    editor_id INTEGER,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS media_assets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    listing_id INTEGER NOT NULL REFERENCES listings(id),
    kind TEXT NOT NULL,
    storage_path TEXT NOT NULL,
    qc_status TEXT NOT NULL DEFAULT 'pending',
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS processing_jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    listing_id INTEGER NOT NULL REFERENCES listings(id),
    external_job_id TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    input_refs TEXT NOT NULL,
    output_ref TEXT,
    metrics_json TEXT,
    retry_count INTEGER NOT NULL DEFAULT 0,
    error_message TEXT,
    queued_at TEXT,
    started_at TEXT,
    completed_at TEXT,
    last_failed_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS job_events (
    id TEXT PRIMARY KEY,
    listing_id INTEGER NOT NULL,
    job_id INTEGER,
    event_type TEXT NOT NULL,
    old_value TEXT,
    new_value TEXT,
    actor TEXT NOT NULL,
    notes TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_listings_ops_status ON listings(ops_status);
CREATE INDEX IF NOT EXISTS idx_media_assets_listing ON media_assets(listing_id);
CREATE INDEX IF NOT EXISTS idx_processing_jobs_listing ON processing_jobs(listing_id);
CREATE INDEX IF NOT EXISTS idx_processing_jobs_status ON processing_jobs(status);
CREATE INDEX IF NOT EXISTS idx_job_events_listing ON job_events(listing_id, created_at);
CREATE INDEX IF NOT EXISTS idx_job_events_job ON job_events(job_id);
`

package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS contact_lists (
    id               UUID PRIMARY KEY,
    name             TEXT NOT NULL,
    source_file_name TEXT,
    total_contacts   INTEGER NOT NULL DEFAULT 0,
    status           TEXT NOT NULL DEFAULT 'active',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT contact_lists_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS contacts (
    id               UUID PRIMARY KEY,
    contact_list_id  UUID NOT NULL REFERENCES contact_lists(id),
    name             TEXT NOT NULL,
    phone            TEXT NOT NULL,
    email            TEXT,
    additional_data  JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT contacts_list_phone_key UNIQUE (contact_list_id, phone)
);
CREATE INDEX IF NOT EXISTS idx_contacts_list_created ON contacts(contact_list_id, created_at);

CREATE TABLE IF NOT EXISTS leads (
    id                  UUID PRIMARY KEY,
    company_name        TEXT,
    decision_maker_name TEXT,
    email               TEXT,
    phone_number        TEXT,
    job_posting_url     TEXT,
    city_state          TEXT,
    salary_range        TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_leads_phone_number ON leads(phone_number);

CREATE TABLE IF NOT EXISTS calls_log (
    uuid        UUID PRIMARY KEY,
    lead_id     UUID REFERENCES leads(id),
    company     TEXT,
    phone       TEXT,
    call_status TEXT NOT NULL DEFAULT 'initiated',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_calls_log_phone_created ON calls_log(phone, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_calls_log_lead_created ON calls_log(lead_id, created_at DESC);
`

// Migrate creates the tables this service writes to when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

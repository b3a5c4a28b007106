package migration

// schema é aplicado em ordem; cada passo é idempotente.
var schema = []step{
	{
		name: "tenants",
		sql: `CREATE TABLE IF NOT EXISTS tenants (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		name: "connections",
		sql: `CREATE TABLE IF NOT EXISTS connections (
			id                     TEXT PRIMARY KEY,
			tenant_id              TEXT NOT NULL REFERENCES tenants (id),
			provider               TEXT NOT NULL,
			status                 TEXT NOT NULL DEFAULT 'active',
			credentials            TEXT,
			metadata               TEXT,
			credentials_updated_at TIMESTAMPTZ,
			metadata_updated_at    TIMESTAMPTZ,
			last_sync_at           TIMESTAMPTZ,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		name: "connections_tenant_provider_key",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS connections_tenant_provider_key ON connections (tenant_id, provider)`,
	},
	{
		name: "connections_tenant_idx",
		sql:  `CREATE INDEX IF NOT EXISTS connections_tenant_idx ON connections (tenant_id, status)`,
	},
	{
		name: "ad_accounts",
		sql: `CREATE TABLE IF NOT EXISTS ad_accounts (
			id            TEXT PRIMARY KEY,
			tenant_id     TEXT NOT NULL REFERENCES tenants (id),
			connection_id TEXT NOT NULL REFERENCES connections (id),
			external_id   TEXT NOT NULL,
			name          TEXT NOT NULL,
			currency      TEXT,
			status        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, external_id)
		)`,
	},
	{
		name: "campaigns",
		sql: `CREATE TABLE IF NOT EXISTS campaigns (
			id              TEXT PRIMARY KEY,
			tenant_id       TEXT NOT NULL REFERENCES tenants (id),
			ad_account_id   TEXT NOT NULL REFERENCES ad_accounts (id),
			external_id     TEXT NOT NULL,
			name            TEXT NOT NULL,
			status          TEXT NOT NULL,
			objective       TEXT,
			daily_budget    BIGINT,
			lifetime_budget BIGINT,
			bid_strategy    TEXT,
			metadata        JSONB,
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, external_id)
		)`,
	},
	{
		name: "ad_groups",
		sql: `CREATE TABLE IF NOT EXISTS ad_groups (
			id                   TEXT PRIMARY KEY,
			tenant_id            TEXT NOT NULL REFERENCES tenants (id),
			ad_account_id        TEXT NOT NULL REFERENCES ad_accounts (id),
			campaign_id          TEXT NOT NULL REFERENCES campaigns (id),
			external_id          TEXT NOT NULL,
			campaign_external_id TEXT NOT NULL,
			name                 TEXT NOT NULL,
			status               TEXT NOT NULL,
			daily_budget         BIGINT,
			lifetime_budget      BIGINT,
			bid_amount           BIGINT,
			bid_strategy         TEXT,
			optimization_goal    TEXT,
			billing_event        TEXT,
			metadata             JSONB,
			created_at           TIMESTAMPTZ NOT NULL,
			updated_at           TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, external_id)
		)`,
	},
	{
		name: "ads",
		sql: `CREATE TABLE IF NOT EXISTS ads (
			id                   TEXT PRIMARY KEY,
			tenant_id            TEXT NOT NULL REFERENCES tenants (id),
			ad_account_id        TEXT NOT NULL REFERENCES ad_accounts (id),
			ad_group_id          TEXT NOT NULL REFERENCES ad_groups (id),
			external_id          TEXT NOT NULL,
			ad_group_external_id TEXT NOT NULL,
			name                 TEXT NOT NULL,
			status               TEXT NOT NULL,
			creative             JSONB,
			metadata             JSONB,
			created_at           TIMESTAMPTZ NOT NULL,
			updated_at           TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, external_id)
		)`,
	},
	{
		name: "sync_history",
		sql: `CREATE TABLE IF NOT EXISTS sync_history (
			id              TEXT PRIMARY KEY,
			tenant_id       TEXT NOT NULL REFERENCES tenants (id),
			connection_id   TEXT NOT NULL REFERENCES connections (id),
			provider        TEXT NOT NULL,
			status          TEXT NOT NULL,
			started_at      TIMESTAMPTZ NOT NULL,
			finished_at     TIMESTAMPTZ,
			duration_ms     BIGINT NOT NULL DEFAULT 0,
			accounts        INTEGER NOT NULL DEFAULT 0,
			accounts_failed INTEGER NOT NULL DEFAULT 0,
			campaigns       INTEGER NOT NULL DEFAULT 0,
			ad_groups       INTEGER NOT NULL DEFAULT 0,
			ads             INTEGER NOT NULL DEFAULT 0,
			changes         INTEGER NOT NULL DEFAULT 0,
			skipped         INTEGER NOT NULL DEFAULT 0,
			error_category  TEXT,
			error_message   TEXT
		)`,
	},
	{
		name: "sync_history_tenant_idx",
		sql:  `CREATE INDEX IF NOT EXISTS sync_history_tenant_idx ON sync_history (tenant_id, started_at DESC)`,
	},
	{
		name: "change_records",
		sql: `CREATE TABLE IF NOT EXISTS change_records (
			id              TEXT PRIMARY KEY,
			tenant_id       TEXT NOT NULL REFERENCES tenants (id),
			entity_type     TEXT NOT NULL,
			entity_id       TEXT NOT NULL,
			external_id     TEXT NOT NULL,
			change_type     TEXT NOT NULL,
			changed_at      TIMESTAMPTZ NOT NULL,
			fields          JSONB NOT NULL,
			before          JSONB,
			after           JSONB,
			sync_history_id TEXT REFERENCES sync_history (id),
			reason          TEXT,
			created_at      TIMESTAMPTZ NOT NULL
		)`,
	},
	{
		name: "change_records_entity_idx",
		sql:  `CREATE INDEX IF NOT EXISTS change_records_entity_idx ON change_records (tenant_id, entity_type, entity_id, changed_at)`,
	},
	{
		name: "change_records_window_idx",
		sql:  `CREATE INDEX IF NOT EXISTS change_records_window_idx ON change_records (tenant_id, changed_at)`,
	},
	// registros de mudança nunca são alterados nem apagados
	{
		name: "change_records_no_update",
		sql:  `CREATE OR REPLACE RULE change_records_no_update AS ON UPDATE TO change_records DO INSTEAD NOTHING`,
	},
	{
		name: "change_records_no_delete",
		sql:  `CREATE OR REPLACE RULE change_records_no_delete AS ON DELETE TO change_records DO INSTEAD NOTHING`,
	},
	{
		name: "insight_points",
		sql: `CREATE TABLE IF NOT EXISTS insight_points (
			tenant_id   TEXT NOT NULL REFERENCES tenants (id),
			entity_type TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			date        DATE NOT NULL,
			impressions BIGINT NOT NULL DEFAULT 0,
			clicks      BIGINT NOT NULL DEFAULT 0,
			spend       NUMERIC(14, 4) NOT NULL DEFAULT 0,
			conversions NUMERIC(14, 4) NOT NULL DEFAULT 0,
			PRIMARY KEY (tenant_id, entity_type, entity_id, date)
		)`,
	},
	{
		name: "connection_leases",
		sql: `CREATE TABLE IF NOT EXISTS connection_leases (
			connection_id TEXT PRIMARY KEY,
			holder        TEXT NOT NULL,
			acquired_at   TIMESTAMPTZ NOT NULL,
			expires_at    TIMESTAMPTZ NOT NULL
		)`,
	},
}

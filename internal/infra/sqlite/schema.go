package sqlite

// Schema owned by the engine's read model. Amounts are stored as decimal
// strings and summed in Go to avoid float coercion in SQL; dates use
// YYYY-MM-DD and timestamps YYYY-MM-DD HH:MM:SS[.SSS], which compare
// correctly as text.
const schema = `
CREATE TABLE IF NOT EXISTS budgets (
	id              TEXT PRIMARY KEY,
	workspace_id    TEXT NOT NULL,
	name            TEXT NOT NULL,
	recurrence_mode TEXT NOT NULL DEFAULT '',
	anchor_date     TEXT,
	interval_days   INTEGER,
	anchor_day_1    INTEGER,
	anchor_day_2    INTEGER
);

CREATE TABLE IF NOT EXISTS categories (
	id                  TEXT PRIMARY KEY,
	workspace_id        TEXT NOT NULL,
	parent_id           TEXT NOT NULL DEFAULT '',
	name                TEXT NOT NULL,
	display_order       INTEGER NOT NULL DEFAULT 0,
	is_income           INTEGER NOT NULL DEFAULT 0,
	exclude_from_budget INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_categories_workspace ON categories(workspace_id);

CREATE TABLE IF NOT EXISTS entered_amounts (
	budget_id    TEXT NOT NULL,
	category_id  TEXT NOT NULL,
	period_start TEXT NOT NULL,
	amount       TEXT NOT NULL,
	PRIMARY KEY (budget_id, category_id, period_start)
);

CREATE TABLE IF NOT EXISTS rollover_policies (
	budget_id   TEXT NOT NULL,
	category_id TEXT NOT NULL,
	policy      TEXT NOT NULL,
	PRIMARY KEY (budget_id, category_id)
);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	budget_id   TEXT NOT NULL,
	category_id TEXT NOT NULL,
	posted_at   TEXT NOT NULL,
	amount      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_category
	ON transactions(budget_id, category_id, posted_at);

CREATE TABLE IF NOT EXISTS accounts (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	name         TEXT NOT NULL,
	balance      TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS budget_accounts (
	budget_id  TEXT NOT NULL,
	account_id TEXT NOT NULL,
	PRIMARY KEY (budget_id, account_id)
);

CREATE TABLE IF NOT EXISTS recurring_items (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	account_id   TEXT NOT NULL,
	category_id  TEXT NOT NULL DEFAULT '',
	name         TEXT NOT NULL,
	amount       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'active',
	frequency    TEXT NOT NULL,
	interval     INTEGER NOT NULL DEFAULT 1,
	starts_on    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recurring_workspace ON recurring_items(workspace_id, status);
`

package sqlite

// Prices are stored in integer cents and timestamps in unix nanoseconds so
// ORDER BY compares them numerically.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id      TEXT PRIMARY KEY,
    balance INTEGER NOT NULL DEFAULT 10000
);

CREATE TABLE IF NOT EXISTS orders (
    seq               INTEGER PRIMARY KEY AUTOINCREMENT,
    id                TEXT NOT NULL UNIQUE,
    owner             TEXT NOT NULL REFERENCES users (id),
    side              TEXT NOT NULL CHECK (side IN ('BID', 'ASK')),
    price_cents       INTEGER NOT NULL CHECK (price_cents > 0),
    quantity          INTEGER NOT NULL CHECK (quantity >= 0),
    original_quantity INTEGER NOT NULL CHECK (original_quantity > 0),
    active            INTEGER NOT NULL DEFAULT 1,
    created_at        INTEGER NOT NULL,
    CHECK (quantity <= original_quantity),
    CHECK (active = (quantity > 0))
);

CREATE INDEX IF NOT EXISTS idx_orders_book ON orders (side, active, price_cents, created_at, seq);

CREATE TABLE IF NOT EXISTS trades (
    id           TEXT PRIMARY KEY,
    bid_owner    TEXT NOT NULL REFERENCES users (id),
    ask_owner    TEXT NOT NULL REFERENCES users (id),
    bid_order_id TEXT NOT NULL REFERENCES orders (id),
    ask_order_id TEXT NOT NULL REFERENCES orders (id),
    price_cents  INTEGER NOT NULL CHECK (price_cents > 0),
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    taker_side   TEXT NOT NULL CHECK (taker_side IN ('BID', 'ASK')),
    created_at   INTEGER NOT NULL,
    CHECK (bid_owner <> ask_owner)
);

CREATE INDEX IF NOT EXISTS idx_trades_created_at ON trades (created_at);
`

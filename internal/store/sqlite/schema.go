package sqlite

// SchemaVersion is the schema this build reads and writes.
const SchemaVersion = "0.1"

// initialSchema holds schema_migrations for version tracking and the single
// boot_record row that mirrors the direct record layout.
const initialSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS boot_record (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    status INTEGER NOT NULL CHECK (status BETWEEN 0 AND 65535),
    bl TEXT NOT NULL DEFAULT '',
    os_a TEXT NOT NULL DEFAULT '',
    os_b TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL
);
`

// slotColumns maps description slots to boot_record columns, in slot order.
var slotColumns = [...]string{"bl", "os_a", "os_b"}

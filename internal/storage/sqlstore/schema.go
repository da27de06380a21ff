package sqlstore

import (
	"fmt"

	"helpdesk/internal/models"
)

type lookupTable struct {
	table  string
	column string
}

var lookupTables = map[models.LookupKind]lookupTable{
	models.KindCategory: {table: "categories", column: "category_id"},
	models.KindPriority: {table: "priorities", column: "priority_id"},
	models.KindStatus:   {table: "statuses", column: "status_id"},
}

func schema(driver string) []string {
	// go-sqlite3 only converts columns declared DATETIME back into time.Time.
	ts := "DATETIME"
	if driver == DriverPostgres {
		ts = "TIMESTAMPTZ"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT FALSE,
            created_at %[1]s NOT NULL,
            updated_at %[1]s
        );`, ts),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));`,
	}

	for _, kind := range models.LookupKinds {
		lt := lookupTables[kind]
		stmts = append(stmts,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            color TEXT NOT NULL,
            created_at %[2]s NOT NULL,
            updated_at %[2]s
        );`, lt.table, ts),
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_name ON %[1]s(LOWER(name));`, lt.table),
		)
	}

	stmts = append(stmts,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tickets (
            id TEXT PRIMARY KEY,
            subject TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
            priority_id TEXT NOT NULL REFERENCES priorities(id) ON DELETE RESTRICT,
            status_id TEXT NOT NULL REFERENCES statuses(id) ON DELETE RESTRICT,
            created_by_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
            created_at %[1]s NOT NULL,
            updated_at %[1]s,
            completed_at %[1]s
        );`, ts),
		`CREATE INDEX IF NOT EXISTS idx_tickets_category ON tickets(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_priority ON tickets(priority_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_created_by ON tickets(created_by_id);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS comments (
            id TEXT PRIMARY KEY,
            content TEXT NOT NULL,
            ticket_id TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
            user_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
            created_at %[1]s NOT NULL,
            updated_at %[1]s
        );`, ts),
		`CREATE INDEX IF NOT EXISTS idx_comments_ticket ON comments(ticket_id);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS operations (
            id TEXT PRIMARY KEY,
            description TEXT NOT NULL,
            ticket_id TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
            user_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
            created_at %[1]s NOT NULL,
            updated_at %[1]s
        );`, ts),
		`CREATE INDEX IF NOT EXISTS idx_operations_ticket ON operations(ticket_id);`,
	)
	return stmts
}

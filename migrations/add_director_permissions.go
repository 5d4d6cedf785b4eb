package migrations

import "database/sql"

// AddDirectorPermissions adds the per-director capability columns to
// project_members for databases created before delegated deletion existed.
func AddDirectorPermissions(db *sql.DB) error {
	for _, column := range []string{"can_delete_expenses", "can_delete_members"} {
		present, err := hasColumn(db, "project_members", column)
		if err != nil {
			return err
		}
		if present {
			continue
		}
		if _, err := db.Exec("ALTER TABLE project_members ADD COLUMN " + column + " BOOLEAN NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}
	return nil
}

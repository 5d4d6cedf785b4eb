package migrations

import "database/sql"

// AddReceiptObject adds the object-storage key column linking an expense to
// its uploaded receipt image.
func AddReceiptObject(db *sql.DB) error {
	present, err := hasColumn(db, "expenses", "receipt_object")
	if err != nil {
		return err
	}
	if present {
		return nil
	}
	_, err = db.Exec("ALTER TABLE expenses ADD COLUMN receipt_object TEXT")
	return err
}

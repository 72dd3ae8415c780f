package domain

// ContactTable is the parsed upload: an ordered header row plus the data rows.
// Rows are not required to be as wide as Headers.
type ContactTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnRoles holds the resolved name/phone columns of a ContactTable.
// Categories lists the remaining headers in table order.
type ColumnRoles struct {
	NameIndex  int      `json:"nameIndex"`
	PhoneIndex int      `json:"phoneIndex"`
	Categories []string `json:"categories"`
}

// Cell returns the cell at idx and whether the row has one.
func Cell(row []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}

// ParsedContacts is an uploaded sheet together with its detected column
// roles. ColumnError is set instead of Columns when detection failed, so the
// caller can still show the table and fix the headers.
type ParsedContacts struct {
	ContactTable
	Columns     *ColumnRoles `json:"columns,omitempty"`
	ColumnError string       `json:"columnError,omitempty"`
}

package domain

import "errors"

// ErrDatabaseNotFound indicates a reference database is missing from the store
var ErrDatabaseNotFound = errors.New("database not found")

// ErrSheetNotFound indicates a required worksheet is missing from a workbook
var ErrSheetNotFound = errors.New("worksheet not found")

// ErrDuplicateStream indicates the mapping file maps the same stream twice
var ErrDuplicateStream = errors.New("duplicated stream in mapping")

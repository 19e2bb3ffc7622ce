// Package all registers every storage backend. Blank-import it from a main
// package to make all kinds available through storage.New.
package all

import (
	_ "ddlgen/internal/storage/mssql"
	_ "ddlgen/internal/storage/postgres"
	_ "ddlgen/internal/storage/sqlite"
)

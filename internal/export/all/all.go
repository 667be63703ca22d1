// Package all registers every built-in export sink with the export factory.
// The CLI picks a sink from the destination string, so it needs all of them
// compiled in.
package all

import (
	_ "github.com/johnwroge/Materials-Research/internal/export/csvfile"
	_ "github.com/johnwroge/Materials-Research/internal/export/mssql"
	_ "github.com/johnwroge/Materials-Research/internal/export/postgres"
	_ "github.com/johnwroge/Materials-Research/internal/export/sqlite"
)

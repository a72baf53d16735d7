// Package dialect hides per-engine SQL differences behind one contract.
//
// A Dialect knows how an engine quotes identifiers, names and binds
// parameters, pages and limits result sets, reads back generated identity
// values and spells portable column types.
//
// # Supported Dialects
//
//   - SQL Server 2005+: row_number() window paging, "[" "]" quoting, "@" parameters
//   - SQL Server 2000: nested TOP paging
//   - MySQL/MariaDB: LIMIT/OFFSET paging, backtick quoting, "?" placeholders
//   - PostgreSQL (lib/pq or pgx): LIMIT/OFFSET paging, "$n" placeholders
//   - SQLite (modernc.org/sqlite): LIMIT/OFFSET paging, "@" parameters
//
// Each engine is an independent type. Shared behavior lives in free
// functions (Quote, NamedParameter, RankPaged, NestedTopPaged,
// LimitOffsetPaged, TopPrefixed) that engines compose.
//
// # Resolving a Dialect
//
// Dialects are usually resolved from a provider name and a connection string:
//
//	d, err := dialect.Resolve("sqlserver", dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Empty or engine-neutral provider names ("odbc", "oledb") fall back to
// sniffing the connection string. Unknown providers return a
// *sqlrecord.ProviderNotSupportedError listing the registered names.
//
// # Commands
//
// A Command is SQL text plus its bound parameters:
//
//	cmd := d.CreateCommand("")
//	p, _ := cmd.AddParameter("Name", dialect.TypeString, "Ann")
//	cmd.Text = "select * from [People] where [Name] = " + p.Placeholder
//	rows, err := db.QueryContext(ctx, cmd.Text, cmd.Args()...)
//
// Paging and TOP wrappers do not validate the inner statement; malformed SQL
// surfaces as an engine error at execution.
package dialect

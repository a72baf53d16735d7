package dialect

import (
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Sniff guesses the dialect name from the shape of a connection string. It
// recognizes URL schemes, ADO.NET style "Key=Value;" lists, libpq keyword
// lists, go-sql-driver/mysql DSNs and SQLite file names.
func Sniff(connectionString string) (string, bool) {
	cs := strings.TrimSpace(connectionString)
	if cs == "" {
		return "", false
	}
	lower := strings.ToLower(cs)
	switch {
	case strings.HasPrefix(lower, "sqlserver://"), strings.HasPrefix(lower, "mssql://"):
		return sqlServerVersion(lower), true
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Postgres, true
	case strings.HasPrefix(lower, "mysql://"):
		return MySQL, true
	case strings.HasPrefix(lower, "file:"), strings.HasPrefix(lower, ":memory:"), sqliteFile(lower):
		return SQLite, true
	}
	if keys := adoKeys(lower); strings.Contains(cs, ";") || keys["server"] != "" || keys["data source"] != "" {
		if name, ok := sniffADO(keys, lower); ok {
			return name, true
		}
	}
	if libpq(lower) {
		return Postgres, true
	}
	if strings.ContainsAny(cs, "@(") {
		if cfg, err := mysql.ParseDSN(cs); err == nil && cfg.Addr != "" {
			return MySQL, true
		}
	}
	return "", false
}

// sniffADO inspects an ADO.NET connection string.
func sniffADO(keys map[string]string, lower string) (string, bool) {
	if ds := keys["data source"]; ds != "" && (sqliteFile(ds) || ds == ":memory:") {
		return SQLite, true
	}
	if keys["host"] != "" && (keys["database"] != "" || keys["port"] != "") {
		return Postgres, true
	}
	for _, k := range []string{"server", "data source", "address", "addr", "network address"} {
		if keys[k] != "" {
			return sqlServerVersion(lower), true
		}
	}
	return "", false
}

// adoKeys splits "key=value;key=value" into a map of trimmed, lower-case keys.
func adoKeys(lower string) map[string]string {
	keys := make(map[string]string)
	for _, part := range strings.Split(lower, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		keys[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return keys
}

// libpq reports whether s is a libpq "key=value key=value" list.
func libpq(lower string) bool {
	if strings.Contains(lower, ";") || !strings.Contains(lower, "=") {
		return false
	}
	for _, field := range strings.Fields(lower) {
		k, _, _ := strings.Cut(field, "=")
		switch k {
		case "dbname", "sslmode":
			return true
		case "host":
			if strings.Contains(lower, "user=") || strings.Contains(lower, "port=") {
				return true
			}
		}
	}
	return false
}

func sqliteFile(s string) bool {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// sqlServerVersion selects the 2000 dialect when the connection string pins
// compatibility level 80.
func sqlServerVersion(lower string) string {
	compact := strings.ReplaceAll(lower, " ", "")
	if strings.Contains(compact, "compatibility=80") || strings.Contains(compact, "compatibilitylevel=80") {
		return SQLServer2000
	}
	return SQLServer
}

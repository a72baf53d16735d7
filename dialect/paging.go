package dialect

import (
	"math"
	"strconv"
	"strings"
)

// maxTop caps TOP clauses when a nested TOP query is asked for an unbounded
// number of rows.
const maxTop = math.MaxInt32

// clampPage normalizes a paging request: negative offsets become 0 and
// negative limits mean unbounded (-1).
func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = -1
	}
	return offset, limit
}

// RankPaged filters inner by a row_number() window over orderBy, keeping the
// rows ranked strictly between offset and offset+limit+1.
func RankPaged(inner string, offset, limit int, orderBy string) string {
	offset, limit = clampPage(offset, limit)
	if strings.TrimSpace(orderBy) == "" {
		orderBy = "(select null)"
	}
	var b strings.Builder
	b.WriteString("select * from (select row_number() over (order by ")
	b.WriteString(orderBy)
	b.WriteString(") as __row_rank, __inner.* from (")
	b.WriteString(trimStatement(inner))
	b.WriteString(") as __inner) as __paged where __row_rank > ")
	b.WriteString(strconv.Itoa(offset))
	if limit >= 0 {
		b.WriteString(" and __row_rank < ")
		b.WriteString(strconv.Itoa(offset + limit + 1))
	}
	b.WriteString(" order by __row_rank")
	return b.String()
}

// NestedTopPaged selects the first offset+limit rows of inner, keeps the last
// limit of them by reading in reverse order, and restores the requested order.
//
// A short last page overlaps the previous one: the inner top returns fewer
// than offset+limit rows, so the reversed top reaches back before offset.
// With 12 rows, offset 10 and limit 5 the result is rows 8 through 12, not
// 11 and 12. Callers that need exact pages use RankPaged.
func NestedTopPaged(inner string, offset, limit int, orderBy string) string {
	offset, limit = clampPage(offset, limit)
	if offset == 0 {
		return TopPrefixed(inner, limit, orderBy)
	}
	outer := limit
	if limit < 0 || limit > maxTop-offset {
		outer = maxTop - offset
	}
	orderBy = strings.TrimSpace(orderBy)
	var b strings.Builder
	b.WriteString("select * from (select top ")
	b.WriteString(strconv.Itoa(outer))
	b.WriteString(" * from (select top ")
	b.WriteString(strconv.Itoa(offset + outer))
	b.WriteString(" * from (")
	b.WriteString(trimStatement(inner))
	b.WriteString(") as __t1")
	writeOrder(&b, orderBy)
	b.WriteString(") as __t2")
	writeOrder(&b, ReverseOrder(orderBy))
	b.WriteString(") as __t3")
	writeOrder(&b, orderBy)
	return b.String()
}

// LimitOffsetPaged appends a native limit/offset clause to inner. unbounded
// is the engine's spelling of "no limit", used when an offset is given
// without a limit; an empty unbounded omits the limit clause entirely.
func LimitOffsetPaged(inner string, offset, limit int, orderBy, unbounded string) string {
	offset, limit = clampPage(offset, limit)
	var b strings.Builder
	b.WriteString(trimStatement(inner))
	writeOrder(&b, strings.TrimSpace(orderBy))
	switch {
	case limit >= 0:
		b.WriteString(" limit ")
		b.WriteString(strconv.Itoa(limit))
	case offset > 0 && unbounded != "":
		b.WriteString(" limit ")
		b.WriteString(unbounded)
	}
	if offset > 0 {
		b.WriteString(" offset ")
		b.WriteString(strconv.Itoa(offset))
	}
	return b.String()
}

// TopPrefixed restricts inner with a TOP clause on a derived table.
func TopPrefixed(inner string, limit int, orderBy string) string {
	var b strings.Builder
	b.WriteString("select ")
	if limit >= 0 {
		b.WriteString("top ")
		b.WriteString(strconv.Itoa(limit))
		b.WriteString(" ")
	}
	b.WriteString("* from (")
	b.WriteString(trimStatement(inner))
	b.WriteString(") as __top")
	writeOrder(&b, strings.TrimSpace(orderBy))
	return b.String()
}

// TopLimited restricts inner with a trailing limit clause.
func TopLimited(inner string, limit int, orderBy string) string {
	return LimitOffsetPaged(inner, 0, limit, orderBy, "")
}

// ReverseOrder flips the direction of every term of an order by list.
// Terms without a direction are ascending and become descending.
func ReverseOrder(orderBy string) string {
	terms := splitTerms(orderBy)
	for i, term := range terms {
		term = strings.TrimSpace(term)
		lower := strings.ToLower(term)
		switch {
		case strings.HasSuffix(lower, " desc"):
			terms[i] = strings.TrimSpace(term[:len(term)-len(" desc")]) + " asc"
		case strings.HasSuffix(lower, " asc"):
			terms[i] = strings.TrimSpace(term[:len(term)-len(" asc")]) + " desc"
		case term == "":
			terms[i] = term
		default:
			terms[i] = term + " desc"
		}
	}
	return strings.Join(terms, ", ")
}

// splitTerms splits an order by list on commas outside parentheses.
func splitTerms(s string) []string {
	var (
		terms []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				terms = append(terms, s[start:i])
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) != "" || len(terms) == 0 {
		terms = append(terms, s[start:])
	}
	return terms
}

func writeOrder(b *strings.Builder, orderBy string) {
	if orderBy == "" {
		return
	}
	b.WriteString(" order by ")
	b.WriteString(orderBy)
}

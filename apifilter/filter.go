// Package apifilter translates raw HTTP query parameters into a SQL select
// statement over a collection: a filter (WHERE), a projection (column list) and
// an optional full-text search constraint. It is the Go counterpart of the
// `filterHandler` class of the Express implementation this port follows, which
// chained `.filter().limitFields().searchByQuery()` over a Mongoose query.
//
// The builder is deliberately permissive: any query key that is not reserved
// is passed through verbatim as a column reference in the generated SQL.
// Values always travel as bound parameters, but identifiers do not, so an
// attacker-controlled key name reaches the SQL text unquoted. This reproduces
// the behaviour of the original API and is a known injection-risk surface.
// Callers that want a hardened variant opt into strict mode with
// WithAllowedFields, which rejects unknown keys without any change to the
// chained call sites.
package apifilter

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/user/jobbee-go/apperror"
)

// Reserved query keys that never become filter terms.
const (
	// FieldsParam selects the projection, e.g. fields=title,company.
	FieldsParam = "fields"
	// SearchParam carries the free-text search term, e.g. q=node.
	SearchParam = "q"
)

// operators maps the bracket suffix of a query key (salary[gt]=50000) to its
// SQL comparison operator. `in` is handled separately since it expands into a
// list of placeholders.
var operators = map[string]string{
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
	"ne":  "<>",
}

// filterKeyPattern recognises `column[op]` keys. A key containing brackets
// that does not match this shape is malformed and fails the request.
var filterKeyPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\[([A-Za-z]+)\]$`)

// Builder accumulates filter, projection and search constraints and renders
// them into one SELECT statement. Each chained stage returns the builder
// itself; callers are expected to invoke each stage at most once per request,
// since calling Filter twice would double-apply its constraints.
type Builder struct {
	table       string
	defaultCols []string // projection used when no `fields` key is present
	cols        []string
	where       []string
	args        []interface{}
	searchCol   string
	searchParam string
	allowed     map[string]struct{} // nil means permissive pass-through
	numeric     map[string]struct{} // columns whose values bind as numbers
	err         error
}

// Option customises a Builder at construction time.
type Option func(*Builder)

// WithSearchColumn overrides the tsvector column consulted by Search.
func WithSearchColumn(col string) Option {
	return func(b *Builder) { b.searchCol = col }
}

// WithSearchParam overrides the query key carrying the search term.
func WithSearchParam(key string) Option {
	return func(b *Builder) { b.searchParam = key }
}

// WithNumericFields names the columns whose filter values are parsed into Go
// numbers before binding. Everything else binds as the raw string: a value
// that merely looks numeric (a zipcode, say) must still reach a text column
// as text, or PostgreSQL finds no comparison operator for the pair.
func WithNumericFields(cols ...string) Option {
	return func(b *Builder) {
		b.numeric = make(map[string]struct{}, len(cols))
		for _, c := range cols {
			b.numeric[c] = struct{}{}
		}
	}
}

// WithAllowedFields switches the builder into strict mode: filter and
// projection keys outside the given set are rejected with a ValidationError
// instead of being passed through into the SQL text.
func WithAllowedFields(fields ...string) Option {
	return func(b *Builder) {
		b.allowed = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			b.allowed[f] = struct{}{}
		}
	}
}

// New creates a Builder over `table`. `defaultColumns` is the projection used
// when the client does not request one; by convention it excludes internal
// columns (the generated `search_vector` document vector), mirroring the
// original API's default exclusion of the Mongoose version field.
func New(table string, defaultColumns []string, opts ...Option) *Builder {
	b := &Builder{
		table:       table,
		defaultCols: defaultColumns,
		cols:        defaultColumns,
		searchCol:   "search_vector",
		searchParam: SearchParam,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// fail records the first error; subsequent stages become no-ops so the
// chained call style stays intact.
func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// checkAllowed enforces strict mode for a column name. In permissive mode it
// always passes.
func (b *Builder) checkAllowed(col string) error {
	if b.allowed == nil {
		return nil
	}
	if _, ok := b.allowed[col]; !ok {
		return apperror.NewValidationError(fmt.Sprintf("unknown filter field '%s'", col), nil)
	}
	return nil
}

// Filter turns every non-reserved query parameter into a WHERE constraint.
// A plain key is an equality test; a `key[op]` suffix selects a comparison
// operator; `key[in]` takes a comma-separated list. Keys are processed in
// sorted order so the generated SQL is deterministic.
func (b *Builder) Filter(params url.Values) *Builder {
	if b.err != nil {
		return b
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		if key == FieldsParam || key == b.searchParam {
			continue // reserved keys never become filter terms
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, value := range params[key] {
			if err := b.addConstraint(key, value); err != nil {
				return b.fail(err)
			}
		}
	}
	return b
}

// addConstraint appends a single WHERE term for one key/value pair.
func (b *Builder) addConstraint(key, value string) error {
	col, op := key, "="
	list := false

	if strings.ContainsAny(key, "[]") {
		m := filterKeyPattern.FindStringSubmatch(key)
		if m == nil {
			return apperror.NewValidationError(fmt.Sprintf("malformed filter key '%s'", key), nil)
		}
		col = m[1]
		switch {
		case m[2] == "in":
			list = true
		case operators[m[2]] != "":
			op = operators[m[2]]
		default:
			return apperror.NewValidationError(fmt.Sprintf("unsupported filter operator '%s'", m[2]), nil)
		}
	}

	if err := b.checkAllowed(col); err != nil {
		return err
	}

	if list {
		items := strings.Split(value, ",")
		placeholders := make([]string, len(items))
		for i, item := range items {
			placeholders[i] = b.bind(b.typedValue(col, strings.TrimSpace(item)))
		}
		b.where = append(b.where, fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")))
		return nil
	}

	b.where = append(b.where, fmt.Sprintf("%s %s %s", col, op, b.bind(b.typedValue(col, value))))
	return nil
}

// LimitFields applies the projection. A `fields=a,b` parameter projects
// exactly the named columns (verbatim, with the same identifier exposure as
// Filter); otherwise the default projection applies, which excludes the
// internal document-vector column.
func (b *Builder) LimitFields(params url.Values) *Builder {
	if b.err != nil {
		return b
	}

	raw := params.Get(FieldsParam)
	if raw == "" {
		b.cols = b.defaultCols
		return b
	}

	var cols []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if err := b.checkAllowed(f); err != nil {
			return b.fail(err)
		}
		cols = append(cols, f)
	}
	if len(cols) == 0 {
		return b.fail(apperror.NewValidationError("fields parameter selects no columns", nil))
	}
	b.cols = cols
	return b
}

// Search adds a full-text constraint over the indexed posting text when the
// search parameter is present. Absence of the parameter is not an error.
func (b *Builder) Search(params url.Values) *Builder {
	if b.err != nil {
		return b
	}

	term := strings.TrimSpace(params.Get(b.searchParam))
	if term == "" {
		return b
	}
	b.where = append(b.where, fmt.Sprintf("%s @@ plainto_tsquery('english', %s)", b.searchCol, b.bind(term)))
	return b
}

// Where appends a programmatic constraint, used by callers for conditions that
// do not originate from query parameters (radius predicates, owner scoping).
// Each `?` in cond is rewritten into the next positional placeholder.
func (b *Builder) Where(cond string, args ...interface{}) *Builder {
	if b.err != nil {
		return b
	}
	for _, arg := range args {
		cond = strings.Replace(cond, "?", b.bind(arg), 1)
	}
	b.where = append(b.where, cond)
	return b
}

// bind registers one argument and returns its positional placeholder.
func (b *Builder) bind(arg interface{}) string {
	b.args = append(b.args, arg)
	return fmt.Sprintf("$%d", len(b.args))
}

// Err returns the first error recorded by any stage, if any. The builder
// performs no I/O itself; executing the statement is the caller's job.
func (b *Builder) Err() error {
	return b.err
}

// Columns returns the active projection.
func (b *Builder) Columns() []string {
	return b.cols
}

// SelectSQL renders the accumulated statement.
func (b *Builder) SelectSQL() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	return sb.String()
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []interface{} {
	return b.args
}

// typedValue gives the driver a usable Go type for a raw query-string value.
// This is wire-level typing for the bound parameter, not a semantic rewrite:
// the literal the client sent is what gets compared. Columns declared numeric
// via WithNumericFields parse into Go numbers so PostgreSQL can compare them
// against numeric columns such as salary; every other value binds as the raw
// string, because a numeric-looking value against a text column (zipcode)
// must still travel as text.
func (b *Builder) typedValue(col, s string) interface{} {
	if _, ok := b.numeric[col]; !ok {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

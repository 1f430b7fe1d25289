package apifilter_test

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/user/jobbee-go/apifilter"
	"github.com/user/jobbee-go/apperror"
)

var jobColumns = []string{"id", "title", "company", "zipcode", "salary"}

func newJobsBuilder(opts ...apifilter.Option) *apifilter.Builder {
	opts = append([]apifilter.Option{apifilter.WithNumericFields("id", "salary", "positions")}, opts...)
	return apifilter.New("jobs", jobColumns, opts...)
}

func TestLimitFields_DefaultProjectionExcludesInternalColumn(t *testing.T) {
	b := newJobsBuilder().Filter(url.Values{}).LimitFields(url.Values{}).Search(url.Values{})
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sql := b.SelectSQL()
	if strings.Contains(sql, "search_vector") {
		t.Errorf("default projection must exclude the internal column, got %q", sql)
	}
	if got, want := sql, "SELECT id, title, company, zipcode, salary FROM jobs"; got != want {
		t.Errorf("SelectSQL() = %q, want %q", got, want)
	}
}

func TestLimitFields_ExplicitProjection(t *testing.T) {
	params := url.Values{"fields": {"title,company"}}
	b := newJobsBuilder().Filter(params).LimitFields(params)
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := b.Columns(); !reflect.DeepEqual(got, []string{"title", "company"}) {
		t.Errorf("Columns() = %v, want [title company]", got)
	}
	if got, want := b.SelectSQL(), "SELECT title, company FROM jobs"; got != want {
		t.Errorf("SelectSQL() = %q, want %q", got, want)
	}
}

func TestFilter_OperatorAndProjectionScenario(t *testing.T) {
	// salary greater than 50000, projecting only title and company.
	params := url.Values{
		"salary[gt]": {"50000"},
		"fields":     {"title,company"},
	}
	b := newJobsBuilder().Filter(params).LimitFields(params).Search(params)
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := b.SelectSQL(), "SELECT title, company FROM jobs WHERE salary > $1"; got != want {
		t.Errorf("SelectSQL() = %q, want %q", got, want)
	}
	if got := b.Args(); len(got) != 1 || got[0] != int64(50000) {
		t.Errorf("Args() = %v, want [50000]", got)
	}
}

func TestFilter_Operators(t *testing.T) {
	tests := []struct {
		key      string
		value    string
		wantSQL  string
		wantArgs []interface{}
	}{
		{"company", "Acme", "company = $1", []interface{}{"Acme"}},
		{"salary[gte]", "40000", "salary >= $1", []interface{}{int64(40000)}},
		{"salary[lt]", "90000.5", "salary < $1", []interface{}{90000.5}},
		{"positions[lte]", "3", "positions <= $1", []interface{}{int64(3)}},
		{"job_type[ne]", "Internship", "job_type <> $1", []interface{}{"Internship"}},
		{"job_type[in]", "Permanent,Contract", "job_type IN ($1, $2)", []interface{}{"Permanent", "Contract"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			b := newJobsBuilder().Filter(url.Values{tt.key: {tt.value}})
			if err := b.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			wantSQL := "SELECT id, title, company, zipcode, salary FROM jobs WHERE " + tt.wantSQL
			if got := b.SelectSQL(); got != wantSQL {
				t.Errorf("SelectSQL() = %q, want %q", got, wantSQL)
			}
			if got := b.Args(); !reflect.DeepEqual(got, tt.wantArgs) {
				t.Errorf("Args() = %v, want %v", got, tt.wantArgs)
			}
		})
	}
}

func TestFilter_NumericLookingValueOnTextColumnBindsAsString(t *testing.T) {
	// A zipcode looks like a number but lives in a text column; binding it as
	// an integer would leave PostgreSQL with no text-to-bigint comparison.
	b := newJobsBuilder().Filter(url.Values{"zipcode": {"10001"}})
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT id, title, company, zipcode, salary FROM jobs WHERE zipcode = $1"
	if got := b.SelectSQL(); got != wantSQL {
		t.Errorf("SelectSQL() = %q, want %q", got, wantSQL)
	}
	if got := b.Args(); len(got) != 1 || got[0] != "10001" {
		t.Errorf("Args() = %v, want the string \"10001\"", got)
	}
}

func TestFilter_ReservedKeysAreNotConstraints(t *testing.T) {
	params := url.Values{
		"fields": {"title"},
		"q":      {"developer"},
	}
	b := newJobsBuilder().Filter(params)
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql := b.SelectSQL(); strings.Contains(sql, "WHERE") {
		t.Errorf("reserved keys must not produce constraints, got %q", sql)
	}
}

func TestFilter_DeterministicKeyOrder(t *testing.T) {
	params := url.Values{
		"company":  {"Acme"},
		"job_type": {"Permanent"},
	}
	want := newJobsBuilder().Filter(params).SelectSQL()
	for i := 0; i < 20; i++ {
		if got := newJobsBuilder().Filter(params).SelectSQL(); got != want {
			t.Fatalf("non-deterministic SQL: %q vs %q", got, want)
		}
	}
}

func TestFilter_MalformedAndUnsupportedKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"malformed brackets", "salary["},
		{"empty operator", "salary[]"},
		{"unsupported operator", "salary[regex]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newJobsBuilder().Filter(url.Values{tt.key: {"1"}})
			err := b.Err()
			if err == nil {
				t.Fatalf("Filter(%q) expected error, got nil", tt.key)
			}
			if !apperror.IsValidationError(err) {
				t.Errorf("Filter(%q) error = %v, want ValidationError", tt.key, err)
			}
		})
	}
}

func TestFilter_StrictModeRejectsUnknownField(t *testing.T) {
	b := newJobsBuilder(apifilter.WithAllowedFields("title", "company")).
		Filter(url.Values{"password": {"x"}})
	err := b.Err()
	if err == nil {
		t.Fatal("expected error for field outside the allow-list")
	}
	if !apperror.IsValidationError(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestFilter_StrictModeAllowsListedFields(t *testing.T) {
	params := url.Values{"company": {"Acme"}, "fields": {"title,company"}}
	b := newJobsBuilder(apifilter.WithAllowedFields("title", "company")).
		Filter(params).
		LimitFields(params)
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_AddsTextConstraint(t *testing.T) {
	b := newJobsBuilder().Search(url.Values{"q": {"node developer"}})
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT id, title, company, zipcode, salary FROM jobs WHERE search_vector @@ plainto_tsquery('english', $1)"
	if got := b.SelectSQL(); got != wantSQL {
		t.Errorf("SelectSQL() = %q, want %q", got, wantSQL)
	}
	if got := b.Args(); len(got) != 1 || got[0] != "node developer" {
		t.Errorf("Args() = %v, want [node developer]", got)
	}
}

func TestSearch_AbsentTermIsNoop(t *testing.T) {
	b := newJobsBuilder().Search(url.Values{})
	if sql := b.SelectSQL(); strings.Contains(sql, "WHERE") {
		t.Errorf("missing search term must not constrain, got %q", sql)
	}
}

func TestWhere_RewritesPlaceholders(t *testing.T) {
	b := newJobsBuilder().
		Filter(url.Values{"company": {"Acme"}}).
		Where("earth_distance(ll_to_earth(?, ?), ll_to_earth(latitude, longitude)) <= ?", 1.5, 103.8, 16093.4)
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT id, title, company, zipcode, salary FROM jobs WHERE company = $1" +
		" AND earth_distance(ll_to_earth($2, $3), ll_to_earth(latitude, longitude)) <= $4"
	if got := b.SelectSQL(); got != wantSQL {
		t.Errorf("SelectSQL() = %q, want %q", got, wantSQL)
	}
	if got := b.Args(); len(got) != 4 {
		t.Errorf("Args() = %v, want 4 bound values", got)
	}
}

func TestErr_ShortCircuitsLaterStages(t *testing.T) {
	params := url.Values{"salary[regex]": {"x"}, "fields": {"title"}}
	b := newJobsBuilder().Filter(params).LimitFields(params).Search(params)
	if b.Err() == nil {
		t.Fatal("expected recorded error to survive later stages")
	}
	// The projection stage must not have run over the failed builder.
	if got := b.Columns(); !reflect.DeepEqual(got, jobColumns) {
		t.Errorf("Columns() = %v, want untouched defaults after error", got)
	}
}

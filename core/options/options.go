// Package options turns the decoded parameters of a data-loading request into
// load options and processing options.
//
// Load options describe what is selected: paging (skip, take), sorting,
// grouping, filtering, summaries and the search shortcut. Processing options
// change how the query is run without changing what it selects, such as the
// client's timezone offset and the summary query limit.
//
// Filter and search values are coerced using a type schema, since query
// strings carry everything as text. Parameters that cannot be parsed are
// reported as issues and left out of the result; the rest of the request is
// still processed.
package options

import (
	"github.com/asaidimu/go-loadoptions/core/query"
)

// Issue codes reported in Result.Errors.
const (
	CodeInvalidInteger   = "INVALID_INTEGER"
	CodeInvalidBoolean   = "INVALID_BOOLEAN"
	CodeMalformedJSON    = "MALFORMED_JSON"
	CodeInvalidStructure = "INVALID_STRUCTURE"
	CodeCoercionFailed   = "COERCION_FAILED"
)

// Issue describes a parameter that could not be parsed.
type Issue struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Path        string `json:"path,omitempty"`     // The offending parameter
	Severity    string `json:"severity,omitempty"` // e.g., "error", "warning"
	Description string `json:"description,omitempty"`
}

// LoadOptions describes the data a client asked for. Fields are nil when the
// corresponding parameter was absent or rejected.
type LoadOptions struct {
	Skip              *int                `json:"skip,omitempty"`
	Take              *int                `json:"take,omitempty"`
	RequireTotalCount *bool               `json:"requireTotalCount,omitempty"`
	RequireGroupCount *bool               `json:"requireGroupCount,omitempty"`
	Sort              []query.SortInfo    `json:"sort,omitempty"`
	Group             []query.GroupInfo   `json:"group,omitempty"`
	Filter            *query.Filter       `json:"filter,omitempty"`
	TotalSummary      []query.SummaryInfo `json:"totalSummary,omitempty"`
	GroupSummary      []query.SummaryInfo `json:"groupSummary,omitempty"`
	SearchExpr        query.Selectors     `json:"searchExpr,omitempty"`
	SearchOperation   *string             `json:"searchOperation,omitempty"`
	SearchValue       any                 `json:"searchValue,omitempty"`
	Select            []string            `json:"select,omitempty"`
}

// ProcessingOptions carries parameters that affect how a query is processed.
type ProcessingOptions struct {
	TimezoneOffset       *int  `json:"timezoneOffset,omitempty"` // Minutes, as reported by the client
	SummaryQueryLimit    *int  `json:"summaryQueryLimit,omitempty"`
	CaseInsensitiveRegex *bool `json:"caseInsensitiveRegex,omitempty"`
	PreferMetadataCount  *bool `json:"preferMetadataCount,omitempty"`
}

// Result is the outcome of parsing one set of parameters. Errors is never nil.
type Result struct {
	Errors            []Issue           `json:"errors"`
	LoadOptions       LoadOptions       `json:"loadOptions"`
	ProcessingOptions ProcessingOptions `json:"processingOptions"`
}

// HasErrors reports whether any parameter was rejected.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// SearchSpec returns the search shortcut carried by the load options, or
// false when either the expression or the value is missing.
func (o LoadOptions) SearchSpec() (query.SearchSpec, bool) {
	if len(o.SearchExpr) == 0 || o.SearchValue == nil {
		return query.SearchSpec{}, false
	}
	spec := query.SearchSpec{Expr: o.SearchExpr, Value: o.SearchValue}
	if o.SearchOperation != nil {
		spec.Operation = *o.SearchOperation
	}
	return spec, true
}

package options

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-loadoptions/core/query"
	"github.com/asaidimu/go-loadoptions/core/schema"
	"go.uber.org/zap"
)

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) ParserOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDateInference toggles the conversion of ISO-8601 date-time strings on
// fields the schema does not declare. It is enabled by default.
func WithDateInference(enabled bool) ParserOption {
	return func(p *Parser) {
		p.inferDates = enabled
	}
}

// WithStrictCoercion reports filter and search literals that cannot be
// converted to their declared kind as COERCION_FAILED issues, and drops the
// affected parameter. By default such literals are kept as they are.
func WithStrictCoercion() ParserOption {
	return func(p *Parser) {
		p.strict = true
	}
}

// WithEvents enables the parse event bus.
func WithEvents() ParserOption {
	return func(p *Parser) {
		p.withEvents = true
	}
}

// Parser turns decoded request parameters into a Result. A Parser is safe for
// concurrent use.
type Parser struct {
	logger        *zap.Logger
	inferDates    bool
	strict        bool
	withEvents    bool
	bus           *events.TypedEventBus[ParseEvent]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// NewParser creates a Parser. It fails only when the event bus cannot be
// initialized.
func NewParser(opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		logger:        zap.NewNop(),
		inferDates:    true,
		subscriptions: make(map[string]*SubscriptionInfo),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.withEvents {
		bus, err := events.NewTypedEventBus[ParseEvent](events.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("could not initialize event bus: %w", err)
		}
		p.bus = bus
	}
	return p, nil
}

var defaultParser = sync.OnceValue(func() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	return p
})

// GetOptions parses params with a default parser. A nil schema declares no
// fields.
func GetOptions(params map[string]any, s schema.TypeSchema) Result {
	return defaultParser().Parse(params, s)
}

// param binds a recognized parameter to the function that applies it.
type param struct {
	key   string
	apply func(st *parseState, value any) error
}

// paramTable lists the recognized parameters in the order they are processed.
// The search parameters are handled together after this list.
var paramTable = []param{
	{"skip", func(st *parseState, v any) error { return st.integer(v, &st.result.LoadOptions.Skip) }},
	{"take", func(st *parseState, v any) error { return st.integer(v, &st.result.LoadOptions.Take) }},
	{"requireTotalCount", func(st *parseState, v any) error { return st.boolean(v, &st.result.LoadOptions.RequireTotalCount) }},
	{"requireGroupCount", func(st *parseState, v any) error { return st.boolean(v, &st.result.LoadOptions.RequireGroupCount) }},
	{"sort", func(st *parseState, v any) error { return decodeStructured(v, &st.result.LoadOptions.Sort) }},
	{"group", func(st *parseState, v any) error { return decodeStructured(v, &st.result.LoadOptions.Group) }},
	{"filter", (*parseState).filter},
	{"totalSummary", func(st *parseState, v any) error { return decodeStructured(v, &st.result.LoadOptions.TotalSummary) }},
	{"groupSummary", func(st *parseState, v any) error { return decodeStructured(v, &st.result.LoadOptions.GroupSummary) }},
	{"select", (*parseState).selectFields},
	{"summaryQueryLimit", func(st *parseState, v any) error {
		return st.integer(v, &st.result.ProcessingOptions.SummaryQueryLimit)
	}},
	{"tzOffset", func(st *parseState, v any) error { return st.integer(v, &st.result.ProcessingOptions.TimezoneOffset) }},
	{"caseInsensitiveRegex", func(st *parseState, v any) error {
		return st.boolean(v, &st.result.ProcessingOptions.CaseInsensitiveRegex)
	}},
	{"preferMetadataCount", func(st *parseState, v any) error {
		return st.boolean(v, &st.result.ProcessingOptions.PreferMetadataCount)
	}},
}

var searchKeys = map[string]bool{
	"searchExpr":      true,
	"searchOperation": true,
	"searchValue":     true,
}

var recognized = func() map[string]bool {
	m := make(map[string]bool, len(paramTable)+len(searchKeys))
	for _, p := range paramTable {
		m[p.key] = true
	}
	for k := range searchKeys {
		m[k] = true
	}
	return m
}()

// parseState holds the result under construction for a single call.
type parseState struct {
	result  Result
	coercer *query.Coercer
	strict  bool
	logger  *zap.Logger
}

// Parse builds the load and processing options from params, coercing filter
// and search values with s. Parameters that fail to parse are reported in
// Result.Errors and omitted; unrecognized parameters are ignored. Parse never
// fails as a whole.
func (p *Parser) Parse(params map[string]any, s schema.TypeSchema) Result {
	started := time.Now()
	coercer := query.NewCoercer(s,
		query.WithDateInference(p.inferDates),
		query.WithCoercerLogger(p.logger))
	st := &parseState{
		result:  Result{Errors: []Issue{}},
		coercer: coercer,
		strict:  p.strict,
		logger:  p.logger,
	}

	st.run(params)

	p.logger.Debug("Parsed load options",
		zap.Int("params", len(params)),
		zap.Int("issues", len(st.result.Errors)),
		zap.Duration("elapsed", time.Since(started)))
	p.emit(params, st.result, started)
	return st.result
}

func (st *parseState) run(values map[string]any) {
	for _, prm := range paramTable {
		v, ok := values[prm.key]
		if !ok {
			continue
		}
		if err := prm.apply(st, v); err != nil {
			st.reject(prm.key, err)
		}
	}
	st.search(values)

	for key := range values {
		if !recognized[key] {
			st.logger.Debug("Ignoring unrecognized parameter", zap.String("key", key))
		}
	}
}

func (st *parseState) reject(key string, err error) {
	st.logger.Debug("Rejected parameter", zap.String("key", key), zap.Error(err))
	st.result.Errors = append(st.result.Errors, Issue{
		Code:        issueCode(err),
		Message:     fmt.Sprintf("invalid value for %q", key),
		Path:        key,
		Severity:    "error",
		Description: err.Error(),
	})
}

func (st *parseState) integer(v any, dst **int) error {
	i, err := parseInteger(v)
	if err != nil {
		return err
	}
	*dst = &i
	return nil
}

func (st *parseState) boolean(v any, dst **bool) error {
	b, err := parseBoolean(v)
	if err != nil {
		return err
	}
	*dst = &b
	return nil
}

func (st *parseState) filter(v any) error {
	f, err := query.ParseFilter(v)
	if err != nil {
		return err
	}
	coerced, errs := st.coercer.CoerceFilter(f)
	if st.strict && len(errs) > 0 {
		return errs[0]
	}
	st.result.LoadOptions.Filter = &coerced
	return nil
}

func (st *parseState) selectFields(v any) error {
	fields, err := query.ParseSelectors(v)
	if err != nil {
		return err
	}
	st.result.LoadOptions.Select = []string(fields)
	return nil
}

// search copies the search parameters and coerces the value when both the
// expression and the value are present.
func (st *parseState) search(values map[string]any) {
	opts := &st.result.LoadOptions

	if raw, ok := values["searchExpr"]; ok {
		expr, err := query.ParseSelectors(raw)
		if err != nil {
			st.reject("searchExpr", err)
		} else {
			opts.SearchExpr = expr
		}
	}

	if raw, ok := values["searchOperation"]; ok {
		if op, isString := raw.(string); isString {
			opts.SearchOperation = &op
		} else {
			st.reject("searchOperation", fmt.Errorf("%w: unexpected %T", ErrInvalidStructure, raw))
		}
	}

	raw, ok := values["searchValue"]
	if !ok {
		return
	}
	opts.SearchValue = raw

	spec, ok := opts.SearchSpec()
	if !ok {
		return
	}
	coerced, errs := st.coercer.CoerceSearch(spec)
	if st.strict && len(errs) > 0 {
		opts.SearchValue = nil
		st.reject("searchValue", errs[0])
		return
	}
	opts.SearchValue = coerced.Value
}

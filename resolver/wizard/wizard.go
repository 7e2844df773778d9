// Package wizard implements the three step resolver editor: resolver type, upstream and
// resolver configuration. The wizard never persists a configuration that the backend has not
// validated first.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gobuffalo/flect"
	"github.com/hashicorp/go-multierror"
	"github.com/platform-mesh/golang-commons/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/solo-io/graphql-console/apis/v1beta1"
	"github.com/solo-io/graphql-console/resolver/conversion"
	"github.com/solo-io/graphql-console/resolver/display"
	"github.com/solo-io/graphql-console/schema/binding"
)

const DefaultSeedDelay = 50 * time.Millisecond

const (
	MsgResolverTypeRequired   = "You need to specify a resolver type."
	MsgUpstreamRequired       = "You need to specify an upstream."
	MsgResolverConfigRequired = "You need to specify a resolver configuration."
)

var (
	ErrCancelled      = errors.New("wizard was cancelled")
	ErrFirstStep      = errors.New("already at the first step")
	ErrLastStep       = errors.New("already at the last step")
	ErrUnknownStep    = errors.New("unknown step")
	ErrNotValidated   = errors.New("resolver configuration has not been validated")
	ErrNothingChanged = errors.New("nothing changed since the wizard opened")
)

type Step int

const (
	StepResolverType Step = iota
	StepUpstream
	StepResolverConfig
)

var stepNames = []string{"resolver_type", "upstream", "resolver_config"}

// Steps lists the steps in order.
func Steps() []Step {
	return []Step{StepResolverType, StepUpstream, StepResolverConfig}
}

func (s Step) valid() bool {
	return s >= StepResolverType && s <= StepResolverConfig
}

func (s Step) String() string {
	if !s.valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return flect.Camelize(stepNames[s])
}

// Title is the heading shown for s, e.g. "Resolver Config".
func (s Step) Title() string {
	if !s.valid() {
		return s.String()
	}
	return flect.Titleize(stepNames[s])
}

// Values is the form state.
type Values struct {
	ResolverType   v1beta1.ResolverType `json:"resolverType"`
	Upstream       string               `json:"upstream"`
	ResolverConfig string               `json:"resolverConfig"`
}

// Backend is the part of the backend client the wizard needs.
type Backend interface {
	ValidateResolverYaml(ctx context.Context, yaml string, kind v1beta1.ResolverKind) error
	ValidateSchemaDefinition(ctx context.Context, req v1beta1.ValidateSchemaDefinitionRequest) error
	UpsertResolver(ctx context.Context, req v1beta1.UpsertResolverRequest) (*v1beta1.GraphQLApi, error)
}

// Target is the field whose resolver is edited. Current is nil when the field has no resolver.
type Target struct {
	APIRef       v1beta1.ClusterObjectRef
	TypeName     string
	FieldName    string
	ResolverName string
	Current      *v1beta1.Resolution
}

// DefaultResolverName is the name a new resolver for typeName.fieldName receives.
func DefaultResolverName(typeName, fieldName string) string {
	return binding.ResolverKey{OwnerType: typeName, FieldName: fieldName}.String()
}

type Option func(*Wizard)

func WithSeedDelay(d time.Duration) Option {
	return func(w *Wizard) { w.seedDelay = d }
}

func WithLogger(log *logger.Logger) Option {
	return func(w *Wizard) { w.log = log }
}

// Wizard is safe for concurrent use.
type Wizard struct {
	backend   Backend
	log       *logger.Logger
	seedDelay time.Duration

	mu        sync.Mutex
	target    Target
	step      Step
	values    Values
	initial   Values
	valid     bool
	message   string
	edited    bool
	seeded    bool
	seedType  v1beta1.ResolverType
	seedGen   int
	seedTimer *time.Timer
	cancelled bool
}

// New opens the wizard at StepResolverType. The resolver type and upstream start from the
// current resolver when there is one.
func New(b Backend, target Target, opts ...Option) *Wizard {
	if target.ResolverName == "" {
		target.ResolverName = DefaultResolverName(target.TypeName, target.FieldName)
	}

	w := &Wizard{
		backend:   b,
		seedDelay: DefaultSeedDelay,
		target:    target,
		step:      StepResolverType,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.values.ResolverType = v1beta1.ResolverTypeREST
	if target.Current != nil {
		if t := target.Current.Type(); t != "" {
			w.values.ResolverType = t
		}
		if ref := target.Current.UpstreamRef(); ref != nil && ref.Name != "" {
			w.values.Upstream = ref.String()
		}
	}
	w.initial = w.values
	return w
}

func (w *Wizard) Target() Target {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Values() Values {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values
}

// Valid reports whether the current configuration passed backend validation.
func (w *Wizard) Valid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.valid
}

// Message is the short validation or submit failure text, empty when there is none.
func (w *Wizard) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message
}

func (w *Wizard) Seeded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seeded
}

// Dirty reports whether any value differs from its initial value.
func (w *Wizard) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values != w.initial
}

func (w *Wizard) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.cancelled && w.valid && w.values != w.initial
}

func (w *Wizard) SetResolverType(t v1beta1.ResolverType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return ErrCancelled
	}
	if t != "" {
		parsed, err := v1beta1.ParseResolverType(string(t))
		if err != nil {
			return err
		}
		t = parsed
	}
	if t != w.values.ResolverType {
		w.values.ResolverType = t
		w.invalidate()
	}
	return nil
}

func (w *Wizard) SetUpstream(upstream string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return ErrCancelled
	}
	w.values.Upstream = strings.TrimSpace(upstream)
	return nil
}

// SetResolverConfig records a user edit. A pending seed no longer applies.
func (w *Wizard) SetResolverConfig(yaml string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return ErrCancelled
	}
	w.edited = true
	w.stopSeed()
	if yaml != w.values.ResolverConfig {
		w.values.ResolverConfig = yaml
		w.invalidate()
	}
	return nil
}

// callers hold w.mu
func (w *Wizard) invalidate() {
	w.valid = false
	w.message = ""
}

// FieldErrors aggregates the required-field failures of every step.
func (w *Wizard) FieldErrors() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var result *multierror.Error
	for _, s := range Steps() {
		if err := w.stepError(s); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// callers hold w.mu
func (w *Wizard) stepError(s Step) error {
	switch s {
	case StepResolverType:
		if w.values.ResolverType == "" {
			return errors.New(MsgResolverTypeRequired)
		}
	case StepUpstream:
		if w.values.Upstream == "" {
			return errors.New(MsgUpstreamRequired)
		}
	case StepResolverConfig:
		if strings.TrimSpace(w.values.ResolverConfig) == "" {
			return errors.New(MsgResolverConfigRequired)
		}
	}
	return nil
}

// Next moves forward when the current step is complete.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return ErrCancelled
	}
	if w.step == StepResolverConfig {
		return ErrLastStep
	}
	if err := w.stepError(w.step); err != nil {
		return err
	}
	w.enter(w.step + 1)
	return nil
}

func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return ErrCancelled
	}
	if w.step == StepResolverType {
		return ErrFirstStep
	}
	w.enter(w.step - 1)
	return nil
}

// GoTo jumps to s. Moving forward requires every step before s to be complete.
func (w *Wizard) GoTo(s Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return ErrCancelled
	}
	if !s.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStep, int(s))
	}
	for prev := StepResolverType; prev < s; prev++ {
		if err := w.stepError(prev); err != nil {
			return fmt.Errorf("cannot open %s: %w", s.Title(), err)
		}
	}
	w.enter(s)
	return nil
}

// Cancel abandons the wizard. Every later mutation fails with ErrCancelled.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelled = true
	w.stopSeed()
	if w.log != nil {
		w.log.Debug().Str("resolver", w.target.ResolverName).Msg("resolver wizard cancelled")
	}
}

// callers hold w.mu
func (w *Wizard) enter(s Step) {
	w.step = s
	if s == StepResolverConfig {
		w.scheduleSeed()
	}
}

// scheduleSeed fills the editor once per resolver type unless the user already edited it.
// callers hold w.mu
func (w *Wizard) scheduleSeed() {
	if w.edited || (w.seeded && w.seedType == w.values.ResolverType) {
		return
	}
	w.stopSeed()
	gen := w.seedGen
	if w.seedDelay <= 0 {
		w.seed()
		return
	}
	w.seedTimer = time.AfterFunc(w.seedDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.seedGen || w.edited || w.cancelled {
			return
		}
		w.seed()
	})
}

// callers hold w.mu
func (w *Wizard) stopSeed() {
	w.seedGen++
	if w.seedTimer != nil {
		w.seedTimer.Stop()
		w.seedTimer = nil
	}
}

// seed writes the editor content. It becomes the baseline so seeding alone is not a change.
// callers hold w.mu
func (w *Wizard) seed() {
	kind := w.values.ResolverType
	if kind == "" {
		kind = v1beta1.ResolverTypeREST
	}
	text, err := display.ForResolver(w.target.Current, kind)
	if err != nil {
		if w.log != nil {
			w.log.Warn().Err(err).Str("resolver", w.target.ResolverName).Msg("failed to render resolver, using placeholder")
		}
		text = display.Placeholder(kind)
	}

	w.values.ResolverConfig = text
	w.initial.ResolverConfig = text
	w.seeded = true
	w.seedType = w.values.ResolverType
	w.seedTimer = nil
	w.invalidate()
}

// Validate sends the raw configuration to the backend.
func (w *Wizard) Validate(ctx context.Context) (bool, string) {
	w.mu.Lock()
	if w.cancelled {
		w.mu.Unlock()
		return false, ErrCancelled.Error()
	}
	values := w.values
	name := w.target.ResolverName
	w.mu.Unlock()

	ctx, span := otel.Tracer("").Start(ctx, "ResolverWizard.Validate", trace.WithAttributes(
		attribute.String("resolver", name),
		attribute.String("resolverType", string(values.ResolverType)),
	))
	defer span.End()

	var err error
	if values.ResolverType == "" {
		err = errors.New(MsgResolverTypeRequired)
	} else {
		err = w.backend.ValidateResolverYaml(ctx, values.ResolverConfig, values.ResolverType.Kind())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.values != values {
		// edited while validating
		return false, ""
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolver configuration rejected")
		w.valid = false
		w.message = ExtractValidationMessage(err.Error())
		return false, w.message
	}
	w.valid = true
	w.message = ""
	return true, ""
}

// Request builds the upsert request for the current values.
func (w *Wizard) Request() (v1beta1.UpsertResolverRequest, error) {
	if err := w.FieldErrors(); err != nil {
		return v1beta1.UpsertResolverRequest{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	upstream, err := v1beta1.ParseUpstreamValue(w.values.Upstream)
	if err != nil {
		return v1beta1.UpsertResolverRequest{}, err
	}
	return v1beta1.UpsertResolverRequest{
		APIRef:       w.target.APIRef,
		TypeName:     w.target.TypeName,
		FieldName:    w.target.FieldName,
		ResolverName: w.target.ResolverName,
		ResolverType: w.values.ResolverType,
		Yaml:         w.values.ResolverConfig,
		Upstream:     upstream,
	}, nil
}

// Submit checks the schema as it would look with the resolver applied and then stores the
// resolver. On success the submitted values become the new baseline.
func (w *Wizard) Submit(ctx context.Context) (*v1beta1.GraphQLApi, error) {
	w.mu.Lock()
	switch {
	case w.cancelled:
		w.mu.Unlock()
		return nil, ErrCancelled
	case !w.valid:
		w.mu.Unlock()
		return nil, ErrNotValidated
	case w.values == w.initial:
		w.mu.Unlock()
		return nil, ErrNothingChanged
	}
	w.mu.Unlock()

	req, err := w.Request()
	if err != nil {
		return nil, err
	}

	if err := w.backend.ValidateSchemaDefinition(ctx, v1beta1.ValidateSchemaDefinitionRequest{Resolver: &req}); err != nil {
		return nil, w.fail(err)
	}
	api, err := w.backend.UpsertResolver(ctx, req)
	if err != nil {
		return nil, w.fail(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.initial = w.values
	w.message = ""
	if res, ok := api.Resolution(req.ResolverName); ok {
		w.target.Current = &res
	}
	if w.log != nil {
		w.log.Info().Str("graphqlApi", req.APIRef.String()).Str("resolver", req.ResolverName).Msg("resolver saved")
	}
	return api, nil
}

func (w *Wizard) fail(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.message = ExtractValidationMessage(err.Error())
	return err
}

// ExtractValidationMessage shortens a backend validation failure to the part a user can act
// on. Messages of an unknown shape are reduced to their first line.
func ExtractValidationMessage(msg string) string {
	for _, prefix := range []string{conversion.ConvertErrorPrefix, conversion.InvalidErrorPrefix} {
		if i := strings.Index(msg, prefix); i >= 0 {
			msg = msg[i+len(prefix):]
			break
		}
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

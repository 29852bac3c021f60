package messages

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-lfg-client/pkg/domain"
	gotemplate "github.com/goliatone/go-template"
)

var (
	// ErrTranslatorRequired indicates the service cannot operate without a translator.
	ErrTranslatorRequired = errors.New("messages: translator is required")
	// ErrRendererConfig indicates the template renderer was misconfigured.
	ErrRendererConfig = errors.New("messages: renderer configuration is incomplete")
	// ErrTemplateNotFound is returned when no template exists for a notification type.
	ErrTemplateNotFound = errors.New("messages: no template for notification type")
)

// Service renders localized notification messages. One template is registered
// per notification type; localization happens inside the template through the
// t() helper backed by the translator, so rendering the same inputs always
// produces the same output.
type Service struct {
	renderer      *gotemplate.Engine
	translator    i18n.Translator
	defaultLocale string
	localeKey     string

	mu        sync.RWMutex
	templates map[domain.Type]string
	renderMu  sync.Mutex
}

type serviceOptions struct {
	defaultLocale  string
	helperFuncs    []map[string]any
	rendererOpts   []gotemplate.Option
	missingHandler i18n.MissingTranslationHandler
	localeKey      string
}

// Option configures the message service.
type Option func(*serviceOptions)

// WithDefaultLocale overrides the locale used when a render request omits one.
func WithDefaultLocale(locale string) Option {
	return func(so *serviceOptions) {
		so.defaultLocale = locale
	}
}

// WithHelperFuncs registers additional helper functions with the renderer.
func WithHelperFuncs(funcs map[string]any) Option {
	return func(so *serviceOptions) {
		if len(funcs) == 0 {
			return
		}
		so.helperFuncs = append(so.helperFuncs, funcs)
	}
}

// WithRendererOptions forwards options directly to go-template's renderer.
func WithRendererOptions(opts ...gotemplate.Option) Option {
	return func(so *serviceOptions) {
		so.rendererOpts = append(so.rendererOpts, opts...)
	}
}

// WithMissingTranslationHandler customizes how go-i18n helpers surface missing keys.
func WithMissingTranslationHandler(handler i18n.MissingTranslationHandler) Option {
	return func(so *serviceOptions) {
		so.missingHandler = handler
	}
}

// NewService builds the message service wiring the renderer and translator.
func NewService(translator i18n.Translator, opts ...Option) (*Service, error) {
	if translator == nil {
		return nil, ErrTranslatorRequired
	}

	settings := serviceOptions{localeKey: "locale"}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	defaultLocale := strings.TrimSpace(settings.defaultLocale)
	if defaultLocale == "" {
		if provider, ok := translator.(interface{ DefaultLocale() string }); ok {
			defaultLocale = provider.DefaultLocale()
		}
	}
	if defaultLocale == "" {
		defaultLocale = "en"
	}

	rendererOpts := []gotemplate.Option{
		gotemplate.WithBaseDir("."),
	}
	rendererOpts = append(rendererOpts, settings.rendererOpts...)

	renderer, err := gotemplate.NewRenderer(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererConfig, err)
	}

	service := &Service{
		renderer:      renderer,
		translator:    translator,
		defaultLocale: defaultLocale,
		localeKey:     settings.localeKey,
		templates:     make(map[domain.Type]string),
	}

	helperCfg := i18n.HelperConfig{
		LocaleKey:         service.localeKey,
		TemplateHelperKey: "t",
		OnMissing:         settings.missingHandler,
	}
	service.registerHelpers(i18n.TemplateHelpers(translator, helperCfg))
	for _, funcs := range settings.helperFuncs {
		service.registerHelpers(funcs)
	}

	return service, nil
}

// RegisterMessages loads per-type message templates, replacing existing ones.
func (s *Service) RegisterMessages(templates map[domain.Type]string) {
	if s == nil || len(templates) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for typ, tpl := range templates {
		if strings.TrimSpace(tpl) == "" {
			delete(s.templates, typ)
			continue
		}
		s.templates[typ] = tpl
	}
}

// Render produces the localized message for a notification type. Unknown
// types fall back to the generic template.
func (s *Service) Render(typ domain.Type, locale string, data map[string]any) (string, error) {
	if s == nil {
		return "", ErrRendererConfig
	}

	s.mu.RLock()
	tpl, ok := s.templates[typ]
	if !ok {
		tpl, ok = s.templates[domain.TypeGeneric]
	}
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, typ)
	}

	payload := cloneData(data)
	payload[s.localeKey] = s.resolveLocale(locale)

	s.renderMu.Lock()
	rendered, err := s.renderer.RenderString(tpl, payload)
	s.renderMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("messages: render %s: %w", typ, err)
	}
	return strings.TrimSpace(rendered), nil
}

// DefaultLocale exposes the locale used when requests omit one.
func (s *Service) DefaultLocale() string {
	return s.defaultLocale
}

func (s *Service) resolveLocale(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return s.defaultLocale
	}
	return requested
}

func (s *Service) registerHelpers(funcs map[string]any) {
	if len(funcs) == 0 {
		return
	}
	gotemplate.WithTemplateFunc(funcs)(s.renderer)
}

func cloneData(src map[string]any) map[string]any {
	out := make(map[string]any, len(src)+1)
	for key, value := range src {
		out[key] = value
	}
	return out
}

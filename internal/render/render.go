package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-age/internal/config"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed locales/*.json
var localeFS embed.FS

// Renderer produces localized, human-readable output.
type Renderer struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	printer   *message.Printer

	// Languages lists the locale codes found in the embedded catalog.
	Languages []string
}

// New loads the embedded catalog and selects lang. Unknown languages fall
// back to English.
func New(lang string) *Renderer {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	r := &Renderer{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		r.Languages = append(r.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	r.SetLanguage(lang)
	return r
}

// SetLanguage switches the message catalog and number formatting.
func (r *Renderer) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	r.localizer = i18n.NewLocalizer(r.bundle, lang)
	r.printer = message.NewPrinter(tag)
}

// Msg translates key. On a missing key or template error it returns key.
func (r *Renderer) Msg(key string, data map[string]any) string {
	return r.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// Plural translates a message with plural forms selected by count. The
// count is also available to the template as .Count, grouped per locale.
func (r *Renderer) Plural(key string, count int64, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Count"] = r.Number(count)
	return r.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data, PluralCount: count})
}

func (r *Renderer) localize(lc *i18n.LocalizeConfig) string {
	if r.localizer == nil {
		slog.Debug(config.ErrLocNotInit, config.LogKeyComponent, config.CompI18n)
		return lc.MessageID
	}
	msg, err := r.localizer.Localize(lc)
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return lc.MessageID
	}
	return msg
}

// Number formats n with the locale's digit grouping.
func (r *Renderer) Number(n int64) string {
	return r.printer.Sprintf("%d", n)
}

// Decimal formats f with two fractional digits and locale grouping.
func (r *Renderer) Decimal(f float64) string {
	return r.printer.Sprintf("%.2f", f)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteResp, err)
	}
	return nil
}

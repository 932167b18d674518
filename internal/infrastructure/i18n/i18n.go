// Package i18n renders operating unit violation reports in the acting
// user's language.
package i18n

import (
	"context"
	"fmt"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/logger"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var translations = map[language.Tag]map[string]string{
	language.Chinese: {
		orgscope.MsgHeader:        "记录的公司不兼容：",
		orgscope.MsgCompanyRecord: "- 记录是公司 %[1]q，而 %[2]q（%[3]s：%[4]s）属于另一家公司。",
		orgscope.MsgRecord:        "- %[1]q 属于公司 %[2]q，而 %[3]q（%[4]s：%[5]s）属于另一家公司。",
		orgscope.MsgRootCompany:   "- 只能在 %[1]q 上设置根公司。当前设置为 %[2]q",
	},
}

// Translator selects a printer per request
type Translator struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
}

// New builds the report catalogue. fallback is used when the context carries
// no language or one that is not supported.
func New(fallback language.Tag) (*Translator, error) {
	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, msg := range orgscope.Messages {
		if err := cat.SetString(language.English, msg, msg); err != nil {
			return nil, fmt.Errorf("register %q: %w", msg, err)
		}
	}
	for tag, msgs := range translations {
		for _, key := range orgscope.Messages {
			text, ok := msgs[key]
			if !ok {
				return nil, fmt.Errorf("missing %s translation of %q", tag, key)
			}
			if err := cat.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("register %s translation of %q: %w", tag, key, err)
			}
		}
	}

	supported := []language.Tag{language.English, language.Chinese}
	_, idx, _ := language.NewMatcher(supported).Match(fallback)
	supported[0], supported[idx] = supported[idx], supported[0]

	return &Translator{
		catalog:   cat,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Supported lists the report languages, the fallback first
func (t *Translator) Supported() []language.Tag {
	return append([]language.Tag(nil), t.supported...)
}

// Resolve maps tag onto the closest supported language
func (t *Translator) Resolve(tag language.Tag) language.Tag {
	_, idx, _ := t.matcher.Match(tag)
	return t.supported[idx]
}

// Printer returns a printer for the language stored in ctx by
// logger.WithLanguage. It satisfies orgscope.PrinterFunc.
func (t *Translator) Printer(ctx context.Context) *message.Printer {
	tag := t.supported[0]
	if requested, ok := logger.GetLanguage(ctx); ok {
		tag = t.Resolve(requested)
	}
	return message.NewPrinter(tag, message.Catalog(t.catalog))
}

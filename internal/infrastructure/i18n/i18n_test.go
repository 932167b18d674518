package i18n

import (
	"context"
	"testing"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTranslator_Printer(t *testing.T) {
	tr, err := New(language.English)
	require.NoError(t, err)

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"no language uses the fallback", context.Background(), "Incompatible companies on records:"},
		{"english", logger.WithLanguage(context.Background(), language.AmericanEnglish), "Incompatible companies on records:"},
		{"simplified chinese", logger.WithLanguage(context.Background(), language.SimplifiedChinese), "记录的公司不兼容："},
		{"unsupported falls back", logger.WithLanguage(context.Background(), language.German), "Incompatible companies on records:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Printer(tt.ctx).Sprintf(orgscope.MsgHeader))
		})
	}
}

func TestTranslator_Arguments(t *testing.T) {
	tr, err := New(language.Chinese)
	require.NoError(t, err)

	got := tr.Printer(context.Background()).Sprintf(orgscope.MsgRecord, "A1", "Acme", "Customer", "partner_id", `"B1"`)

	assert.Equal(t, `- "A1" 属于公司 "Acme"，而 "Customer"（partner_id："B1"）属于另一家公司。`, got)
	assert.Equal(t, language.Chinese, tr.Supported()[0])
}

func TestTranslator_Resolve(t *testing.T) {
	tr, err := New(language.English)
	require.NoError(t, err)

	assert.Equal(t, language.Chinese, tr.Resolve(language.MustParse("zh-CN")))
	assert.Equal(t, language.English, tr.Resolve(language.MustParse("en-GB")))
}

package room

import (
	"strings"
	"unicode/utf8"

	"campus_chat/pkg/constants"

	"github.com/aquilax/truncate"
)

// normalizePreview 去掉首尾空白；超过上限时截断并补省略号
func normalizePreview(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= constants.PREVIEW_MAX_RUNES {
		return text
	}
	return truncate.Truncator(text, constants.PREVIEW_MAX_RUNES, truncate.CutStrategy{}) + truncate.DEFAULT_OMISSION
}

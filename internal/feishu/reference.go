package feishu

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/z58362026/mcp-packages/pkg/schema"
)

var (
	docxPattern = regexp.MustCompile(`/docx/([^/?#]+)`)
	wikiPattern = regexp.MustCompile(`/wiki/([^/?#]+)`)
)

// ExtractDocToken returns the document token of a docx URL such as
// https://example.feishu.cn/docx/AbCdEf.
func ExtractDocToken(url string) (string, error) {
	return extract(docxPattern, url, "docx")
}

// ExtractWikiToken returns the node token of a wiki URL such as
// https://example.feishu.cn/wiki/AbCdEf.
func ExtractWikiToken(url string) (string, error) {
	return extract(wikiPattern, url, "wiki")
}

func extract(re *regexp.Regexp, url, kind string) (string, error) {
	m := re.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %q is not a Feishu %s URL", schema.ErrInvalidReference, url, kind)
	}
	return m[1], nil
}

// ResolveDocToken picks the document token from an explicit token or a URL.
// The URL wins when both are given.
func ResolveDocToken(token, url string) (string, error) {
	if strings.TrimSpace(url) != "" {
		return ExtractDocToken(url)
	}
	if strings.TrimSpace(token) == "" {
		return "", schema.Validationf("docToken or docUrl is required")
	}
	return token, nil
}

// Package poster builds cover image URLs for published articles. URL
// construction is pure; the rendering service behind the URLs lives in
// the render package.
package poster

import (
	"fmt"
	"net/url"
	"strings"
)

// Builder constructs cover URLs against one rendering service base URL.
type Builder struct {
	baseURL string
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// News builds a standard news cover URL from a source image and headline.
func (b *Builder) News(imageURL, headline string) string {
	return fmt.Sprintf("%s/cover/news?image_url=%s&headline=%s",
		b.baseURL, url.QueryEscape(imageURL), url.QueryEscape(headline))
}

// Memorial builds an in-memoriam cover URL. Callers must only use it
// when both life years are known.
func (b *Builder) Memorial(imageURL, name string, birth, death int) string {
	return fmt.Sprintf("%s/cover/memoriam?image_url=%s&name=%s&birth=%d&death=%d",
		b.baseURL, url.QueryEscape(imageURL), url.QueryEscape(name), birth, death)
}

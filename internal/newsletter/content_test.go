package newsletter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathblog/internal/domain"
	"mathblog/pkg/mathtext/mathml"
)

func testBuilder() *ContentBuilder {
	return NewContentBuilder(mathml.New(), "https://blog.test/")
}

func TestContentBuilder_BuildForPost(t *testing.T) {
	t.Parallel()

	post := domain.Post{
		Title:   `Euler's Identity <3`,
		Slug:    "eulers-identity",
		Excerpt: `The identity $e^{i\pi} + 1 = 0$ is **remarkable**.`,
	}

	content, err := testBuilder().BuildForPost(post)
	require.NoError(t, err)

	assert.Equal(t, `Euler's Identity <3`, content.Subject)
	// Title is escaped in the shell.
	assert.Contains(t, content.HTML, "Euler&#39;s Identity &lt;3")
	// Excerpt markdown is rendered and math is typeset.
	assert.Contains(t, content.HTML, "<strong>remarkable</strong>")
	assert.Contains(t, content.HTML, "<math")
	assert.NotContains(t, content.HTML, "$e^")
	// Canonical link and footer.
	assert.Contains(t, content.HTML, `href="https://blog.test/posts/eulers-identity"`)
	assert.Contains(t, content.HTML, "because you subscribed")
}

func TestContentBuilder_BuildForPost_NoExcerpt(t *testing.T) {
	t.Parallel()

	content, err := testBuilder().BuildForPost(domain.Post{
		Title: "Short note",
		Slug:  "short-note",
	})
	require.NoError(t, err)

	assert.NotContains(t, content.HTML, "margin: 1em 0")
	assert.Contains(t, content.HTML, "Short note")
}

func TestContentBuilder_BuildForPost_TitleInjection(t *testing.T) {
	t.Parallel()

	content, err := testBuilder().BuildForPost(domain.Post{
		Title: `<script>alert("x")</script>`,
		Slug:  `s"><script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, content.HTML, `<script>alert`)
}

func TestContentBuilder_BuildCustom_Markdown(t *testing.T) {
	t.Parallel()

	content, err := testBuilder().BuildCustom("Hi", "Hello **world**", true)
	require.NoError(t, err)

	assert.Equal(t, "Hi", content.Subject)
	assert.Contains(t, content.HTML, "<strong>world</strong>")
	assert.Contains(t, content.HTML, "because you subscribed")
}

func TestContentBuilder_BuildCustom_MarkdownWithMath(t *testing.T) {
	t.Parallel()

	content, err := testBuilder().BuildCustom("Math inside", `We know $a^2 + b^2 = c^2$ holds.`, true)
	require.NoError(t, err)

	assert.Contains(t, content.HTML, "<math")
	assert.NotContains(t, content.HTML, "$a^2")
}

func TestContentBuilder_BuildCustom_PlainText(t *testing.T) {
	t.Parallel()

	content, err := testBuilder().BuildCustom("Plain", "line one\nline <two> & co", false)
	require.NoError(t, err)

	assert.Contains(t, content.HTML, "<p>line one</p><p>line &lt;two&gt; &amp; co</p>")
	// Literal bodies are never interpreted as markup.
	assert.NotContains(t, content.HTML, "<two>")
}

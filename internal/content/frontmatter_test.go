package content

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/blogapi/internal/model"
)

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantHeader string
		wantBody   string
		wantFormat string
		wantErr    error
	}{
		{
			name:       "YAMLヘッダー",
			text:       "---\ntitle: Hello\n---\n# Body\n",
			wantHeader: "title: Hello\n",
			wantBody:   "# Body\n",
			wantFormat: FormatYAML,
		},
		{
			name:       "TOMLヘッダー",
			text:       "+++\ntitle = \"Hello\"\n+++\nbody",
			wantHeader: "title = \"Hello\"\n",
			wantBody:   "body",
			wantFormat: FormatTOML,
		},
		{
			name:       "CRLF改行",
			text:       "---\r\ntitle: Hello\r\n---\r\nbody\r\n",
			wantHeader: "title: Hello\r\n",
			wantBody:   "body\r\n",
			wantFormat: FormatYAML,
		},
		{
			name:       "BOM付き",
			text:       "\ufeff---\ntitle: Hello\n---\nbody",
			wantHeader: "title: Hello\n",
			wantBody:   "body",
			wantFormat: FormatYAML,
		},
		{
			name:       "本文の先頭の空行を保持する",
			text:       "---\ntitle: Hello\n---\n\n\nbody",
			wantHeader: "title: Hello\n",
			wantBody:   "\n\nbody",
			wantFormat: FormatYAML,
		},
		{
			name:       "ヘッダーなし",
			text:       "just text\n---\n",
			wantBody:   "just text\n---\n",
			wantFormat: FormatNone,
		},
		{
			name:    "終了区切りなし",
			text:    "---\ntitle: Hello\nbody",
			wantErr: ErrUnterminatedFrontMatter,
		},
		{
			name:    "区切り行のみ",
			text:    "---",
			wantErr: ErrUnterminatedFrontMatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body, format, err := SplitFrontMatter(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, header)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestParseFrontMatter_YAML(t *testing.T) {
	src := "---\n" +
		"title: \"Hello, World\"\n" +
		"date: 2024-01-15\n" +
		"description: First post\n" +
		"tags: [Go, web, Go]\n" +
		"cover: /images/hello.png\n" +
		"---\n" +
		"# Heading\n\nSome *text*.\n"

	meta, publishedAt, body, err := ParseFrontMatter([]byte(src))
	require.NoError(t, err)

	want := model.Metadata{
		Title:       "Hello, World",
		Date:        "2024-01-15",
		Description: "First post",
		Tags:        []string{"Go", "web", "Go"},
		Cover:       "/images/hello.png",
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), publishedAt)
	assert.Equal(t, "# Heading\n\nSome *text*.\n", body)
}

func TestParseFrontMatter_TOML(t *testing.T) {
	src := "+++\n" +
		"title = \"Hugo style\"\n" +
		"date = 2023-06-01\n" +
		"description = \"TOML header\"\n" +
		"tags = [\"toml\"]\n" +
		"+++\n" +
		"body\n"

	meta, publishedAt, body, err := ParseFrontMatter([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Hugo style", meta.Title)
	assert.Equal(t, "2023-06-01", meta.Date)
	assert.Equal(t, []string{"toml"}, meta.Tags)
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), publishedAt)
	assert.Equal(t, "body\n", body)
}

func TestParseFrontMatter_DateTimeString(t *testing.T) {
	src := "---\ntitle: T\ndate: \"2024-03-01T10:30:00Z\"\ndescription: D\n---\n"

	meta, publishedAt, _, err := ParseFrontMatter([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:30:00Z", meta.Date)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), publishedAt)
}

func TestParseFrontMatter_TagsDefaultToEmpty(t *testing.T) {
	src := "---\ntitle: T\ndate: 2024-01-01\ndescription: D\n---\n"

	meta, _, _, err := ParseFrontMatter([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, meta.Tags)
	assert.Empty(t, meta.Tags)
}

func TestParseFrontMatter_InvalidMetadata(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "タイトルなし", src: "---\ndate: 2024-01-01\ndescription: D\n---\n"},
		{name: "説明なし", src: "---\ntitle: T\ndate: 2024-01-01\n---\n"},
		{name: "日付なし", src: "---\ntitle: T\ndescription: D\n---\n"},
		{name: "不正な日付", src: "---\ntitle: T\ndate: not a date\ndescription: D\n---\n"},
		{name: "ヘッダーなし", src: "plain body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ParseFrontMatter([]byte(tt.src))
			require.ErrorIs(t, err, ErrInvalidMetadata)
		})
	}
}

func TestParseFrontMatter_MalformedHeader(t *testing.T) {
	src := "---\ntitle: [unclosed\n---\nbody"

	_, _, _, err := ParseFrontMatter([]byte(src))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidMetadata), "syntax errors should come from the yaml parser")
	assert.Contains(t, err.Error(), "parse yaml front matter")
}

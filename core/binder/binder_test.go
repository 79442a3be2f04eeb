package binder_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/requestmapper/core/binder"
)

func TestQuery(t *testing.T) {
	t.Parallel()

	t.Run("single_and_repeated", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?q=go&tag=web&tag=api", nil)
		data, err := binder.Query()(r)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"q": "go", "tag": []string{"web", "api"}}, data)
	})

	t.Run("empty_is_present", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		data, err := binder.Query()(r)
		require.NoError(t, err)
		assert.NotNil(t, data)
		assert.Empty(t, data)
	})

	t.Run("sanitized", func(t *testing.T) {
		t.Parallel()

		// "e" + combining acute accent composes to U+00E9
		q := url.Values{"name": {"cafe\u0301\r\n\x00x"}}
		r := httptest.NewRequest(http.MethodGet, "/?"+q.Encode(), nil)
		data, err := binder.Query()(r)
		require.NoError(t, err)
		assert.Equal(t, "caf\u00e9x", data["name"])
	})

	t.Run("replacement_character", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?kept=a%EF%BF%BDb&invalid=a%FFb", nil)
		data, err := binder.Query()(r)
		require.NoError(t, err)
		assert.Equal(t, "a\uFFFDb", data["kept"])
		assert.Equal(t, "ab", data["invalid"])
	})
}

func TestJSON(t *testing.T) {
	t.Parallel()

	newRequest := func(body, contentType string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if contentType != "" {
			r.Header.Set("Content-Type", contentType)
		}
		return r
	}

	t.Run("object", func(t *testing.T) {
		t.Parallel()

		data, err := binder.JSON(0)(newRequest(`{"name":"boots","qty":3,"tags":["a"],"meta":{"k":"v\u0000"}}`, "application/json; charset=utf-8"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"name": "boots",
			"qty":  json.Number("3"),
			"tags": []any{"a"},
			"meta": map[string]any{"k": "v"},
		}, data)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{"", "  ", "null"} {
			data, err := binder.JSON(0)(newRequest(body, "application/json"))
			require.NoError(t, err)
			assert.Nil(t, data, "body %q", body)
		}

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		data, err := binder.JSON(0)(r)
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("empty_object_is_present", func(t *testing.T) {
		t.Parallel()

		data, err := binder.JSON(0)(newRequest(`{}`, "application/json"))
		require.NoError(t, err)
		assert.NotNil(t, data)
		assert.Empty(t, data)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name        string
			body        string
			contentType string
			want        error
		}{
			{"missing_content_type", `{}`, "", binder.ErrMissingContentType},
			{"wrong_media_type", `{}`, "text/plain", binder.ErrUnsupportedMediaType},
			{"malformed", `{"a":`, "application/json", binder.ErrFailedToParseJSON},
			{"not_an_object", `[1,2]`, "application/json", binder.ErrFailedToParseJSON},
			{"trailing_data", `{"a":1} {"b":2}`, "application/json", binder.ErrFailedToParseJSON},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, err := binder.JSON(0)(newRequest(tt.body, tt.contentType))
				require.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("wrong_media_type_leaves_body_unread", func(t *testing.T) {
		t.Parallel()

		body := url.Values{"email": {"jane@example.com"}}.Encode()
		r := newRequest(body, "application/x-www-form-urlencoded")

		_, err := binder.JSON(0)(r)
		require.ErrorIs(t, err, binder.ErrUnsupportedMediaType)

		data, err := binder.Form(0)(r)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"email": "jane@example.com"}, data)
	})

	t.Run("vendor_json_type", func(t *testing.T) {
		t.Parallel()

		data, err := binder.JSON(0)(newRequest(`{"a":"b"}`, "application/vnd.api+json"))
		require.NoError(t, err)
		assert.Equal(t, "b", data["a"])
	})

	t.Run("too_large", func(t *testing.T) {
		t.Parallel()

		_, err := binder.JSON(8)(newRequest(`{"name":"too long"}`, "application/json"))
		require.ErrorIs(t, err, binder.ErrBodyTooLarge)
	})
}

func TestForm(t *testing.T) {
	t.Parallel()

	t.Run("urlencoded", func(t *testing.T) {
		t.Parallel()

		body := url.Values{"email": {"jane@example.com"}, "tag": {"a", "b"}}.Encode()
		r := httptest.NewRequest(http.MethodPost, "/?ignored=1", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		data, err := binder.Form(0)(r)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"email": "jane@example.com", "tag": []string{"a", "b"}}, data)
	})

	t.Run("multipart_with_files", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "holiday"))
		fw, err := mw.CreateFormFile("avatar", "../../etc/passwd")
		require.NoError(t, err)
		_, err = fw.Write([]byte("content"))
		require.NoError(t, err)
		for _, name := range []string{"a.png", "b.png"} {
			fw, err := mw.CreateFormFile("gallery", name)
			require.NoError(t, err)
			_, err = fw.Write([]byte(name))
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		data, err := binder.Form(0)(r)
		require.NoError(t, err)
		assert.Equal(t, "holiday", data["title"])

		avatar, ok := data["avatar"].(*multipart.FileHeader)
		require.True(t, ok)
		assert.Equal(t, "passwd", avatar.Filename)

		gallery, ok := data["gallery"].([]*multipart.FileHeader)
		require.True(t, ok)
		assert.Len(t, gallery, 2)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		data, err := binder.Form(0)(r)
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
		_, err := binder.Form(0)(r)
		require.ErrorIs(t, err, binder.ErrMissingContentType)

		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json")
		_, err = binder.Form(0)(r)
		require.ErrorIs(t, err, binder.ErrUnsupportedMediaType)

		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
		r.Header.Set("Content-Type", "multipart/form-data")
		_, err = binder.Form(0)(r)
		require.ErrorIs(t, err, binder.ErrFailedToParseForm)
	})
}

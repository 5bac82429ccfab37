package i18n

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Middleware resolves the request language and stores a printer in the
// request context. A "lang" query parameter wins over Accept-Language.
// The chosen language is echoed in Content-Language.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := MatchLanguage(r.Header.Get("Accept-Language"))
		if q := r.URL.Query().Get("lang"); q != "" {
			if parsed, err := language.Parse(q); err == nil {
				tag = supported(parsed)
			}
		}

		w.Header().Set("Content-Language", tag.String())
		ctx := WithPrinter(r.Context(), message.NewPrinter(tag))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

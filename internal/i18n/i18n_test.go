package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		accept   string
		expected language.Tag
	}{
		{"en-US,en;q=0.9", language.English},
		{"tr-TR,tr;q=0.9", language.Turkish},
		{"fr-FR", language.English}, // Fallback
		{"", language.English},      // Empty
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MatchLanguage(tt.accept), "Accept: %s", tt.accept)
	}
}

func TestMiddleware(t *testing.T) {
	var got string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Rejection(GetPrinter(r.Context()), "firewall", "delete")
	}))

	tests := []struct {
		name, accept, query string
		want, lang          string
	}{
		{"header", "tr-TR,tr;q=0.9", "", "Kural silinemedi", "tr"},
		{"no header", "", "", "Failed to delete firewall rule", "en"},
		{"query wins", "tr", "en", "Failed to delete firewall rule", "en"},
		{"bad query ignored", "tr", "!!", "Kural silinemedi", "tr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := "/"
			if tc.query != "" {
				target += "?lang=" + tc.query
			}
			req := httptest.NewRequest("GET", target, nil)
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.lang, rec.Header().Get("Content-Language"))
		})
	}
}

func TestGetPrinter_Default(t *testing.T) {
	p := GetPrinter(context.Background())
	assert.Equal(t, "Failed to fetch users", Rejection(p, "users", "fetch"))
}

func TestRejection(t *testing.T) {
	en := ForLanguage("en")
	tr := ForLanguage("tr")

	assert.Equal(t, "Failed to add VPN tunnel", Rejection(en, "vpn", "create"))
	assert.Equal(t, "VPN tüneli eklenemedi", Rejection(tr, "vpn", "create"))
	assert.Equal(t, "Güncelleme yüklenemedi", Rejection(tr, "system", "install"))
	assert.Equal(t, "routes fetch failed", Rejection(en, "routes", "fetch"))

	assert.Equal(t, "Geçersiz kullanıcı adı veya şifre", Text(tr, MsgInvalidCredentials))
	assert.Equal(t, MsgInvalidCredentials, Text(en, MsgInvalidCredentials))
	assert.Equal(t, "quota 100% used", Text(tr, "quota 100% used"), "unknown text passes through")
}

func TestPrinterFrom(t *testing.T) {
	_, ok := PrinterFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrinter(context.Background(), ForLanguage("tr"))
	p, ok := PrinterFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "Kural eklenemedi", Rejection(p, "firewall", "create"))
}

func TestForLanguage_Fallback(t *testing.T) {
	for _, name := range []string{"", "xx-invalid-", "fr"} {
		p := ForLanguage(name)
		assert.Equal(t, "Login failed", Rejection(p, "session", "login"), "language %q", name)
	}
}

func TestNewCLIPrinter(t *testing.T) {
	t.Setenv("LC_ALL", "tr_TR.UTF-8")
	assert.Equal(t, "Giriş başarısız", Rejection(NewCLIPrinter(), "session", "login"))

	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "")
	assert.Equal(t, "Login failed", Rejection(NewCLIPrinter(), "session", "login"))
}

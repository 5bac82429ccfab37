package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// The English text of each message doubles as its catalog key.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgNotFound           = "Record not found"
	MsgNeverLoggedIn      = "Never logged in"
)

// rejections maps "collection/op" to the message used when an operation
// fails without a provider supplied reason.
var rejections = map[string]string{
	"firewall/fetch":  "Failed to fetch firewall rules",
	"firewall/create": "Failed to add firewall rule",
	"firewall/update": "Failed to update firewall rule",
	"firewall/delete": "Failed to delete firewall rule",
	"firewall/toggle": "Failed to change firewall rule state",

	"vpn/fetch":  "Failed to fetch VPN tunnels",
	"vpn/create": "Failed to add VPN tunnel",
	"vpn/update": "Failed to update VPN tunnel",
	"vpn/delete": "Failed to delete VPN tunnel",
	"vpn/toggle": "Failed to change VPN tunnel state",

	"network/fetch":  "Failed to fetch network interfaces",
	"network/create": "Failed to add network interface",
	"network/update": "Failed to update network interface",
	"network/delete": "Failed to delete network interface",
	"network/toggle": "Failed to change network interface state",

	"users/fetch":  "Failed to fetch users",
	"users/create": "Failed to add user",
	"users/update": "Failed to update user",
	"users/delete": "Failed to delete user",
	"users/toggle": "Failed to change user state",

	"system/fetch":   "Failed to fetch system information",
	"system/updates": "Failed to fetch updates",
	"system/install": "Failed to install update",
	"system/reboot":  "Failed to reboot system",

	"session/login":  "Login failed",
	"session/logout": "Logout failed",
}

var turkish = map[string]string{
	"Failed to fetch firewall rules":       "Kurallar alınamadı",
	"Failed to add firewall rule":          "Kural eklenemedi",
	"Failed to update firewall rule":       "Kural güncellenemedi",
	"Failed to delete firewall rule":       "Kural silinemedi",
	"Failed to change firewall rule state": "Kural durumu değiştirilemedi",

	"Failed to fetch VPN tunnels":       "VPN tünelleri alınamadı",
	"Failed to add VPN tunnel":          "VPN tüneli eklenemedi",
	"Failed to update VPN tunnel":       "VPN tüneli güncellenemedi",
	"Failed to delete VPN tunnel":       "VPN tüneli silinemedi",
	"Failed to change VPN tunnel state": "VPN tüneli durumu değiştirilemedi",

	"Failed to fetch network interfaces":       "Ağ arayüzleri alınamadı",
	"Failed to add network interface":          "Ağ arayüzü eklenemedi",
	"Failed to update network interface":       "Ağ arayüzü güncellenemedi",
	"Failed to delete network interface":       "Ağ arayüzü silinemedi",
	"Failed to change network interface state": "Ağ arayüzü durumu değiştirilemedi",

	"Failed to fetch users":       "Kullanıcılar alınamadı",
	"Failed to add user":          "Kullanıcı eklenemedi",
	"Failed to update user":       "Kullanıcı güncellenemedi",
	"Failed to delete user":       "Kullanıcı silinemedi",
	"Failed to change user state": "Kullanıcı durumu değiştirilemedi",

	"Failed to fetch system information": "Sistem bilgileri alınamadı",
	"Failed to fetch updates":            "Güncellemeler alınamadı",
	"Failed to install update":           "Güncelleme yüklenemedi",
	"Failed to reboot system":            "Sistem yeniden başlatılamadı",

	"Login failed":  "Giriş başarısız",
	"Logout failed": "Çıkış başarısız",

	MsgInvalidCredentials: "Geçersiz kullanıcı adı veya şifre",
	MsgNotFound:           "Kayıt bulunamadı",
	MsgNeverLoggedIn:      "Hiç giriş yapılmadı",
}

// known holds every catalog key. Anything else is passed through verbatim.
var known = map[string]bool{}

func init() {
	for key, text := range turkish {
		_ = message.SetString(language.Turkish, key, text)
		known[key] = true
	}
	for _, key := range rejections {
		known[key] = true
	}
}

// Text renders a catalog message with p. Text that is not a catalog key,
// such as a message supplied by a provider, is returned unchanged.
func Text(p *message.Printer, key string) string {
	if !known[key] {
		return key
	}
	return p.Sprintf(message.Key(key, key))
}

// Rejection renders the default failure message for an operation on a
// collection. Unknown pairs get a generic message naming both.
func Rejection(p *message.Printer, collection, op string) string {
	key, ok := rejections[collection+"/"+op]
	if !ok {
		return p.Sprintf("%s %s failed", collection, op)
	}
	return Text(p, key)
}

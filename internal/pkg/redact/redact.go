// redact маскирует персональные данные и секреты перед записью в лог.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Fingerprint — короткий стабильный отпечаток секрета (8 hex-символов sha256).
// Позволяет коррелировать записи лога одного токена, не раскрывая его.
// Пустая строка даёт пустой отпечаток.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}

	return Digest(secret)[:8]
}

// Digest — полный sha256 секрета в hex. Годится как ключ в памяти процесса,
// где короткий отпечаток даёт коллизии.
func Digest(secret string) string {
	if secret == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

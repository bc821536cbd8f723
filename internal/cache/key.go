package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"profession-server/internal/models"
)

const specializationKeyLimit = 20

var (
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRunRe = regexp.MustCompile(`-{2,}`)
)

// slugify превращает произвольный текст (в т.ч. кириллицу) в ascii-слаг.
func slugify(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonAlnumRe.ReplaceAllString(s, "")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DeriveKey детерминированно выводит ключ кеша из запроса.
// Одинаковые поля запроса всегда дают один и тот же ключ - это фактическая
// идентичность артефакта. Функция чистая: без времени и случайности.
func DeriveKey(req models.GenerationRequest) string {
	key := slugify(req.Profession)
	if key == "" {
		// Транслитерация съела все символы - откатываемся на хеш,
		// чтобы ключ оставался непустым и стабильным.
		sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(req.Profession))))
		key = "p-" + hex.EncodeToString(sum[:])[:12]
	}

	// Суффиксы модификаторов добавляются в фиксированном порядке и только
	// когда отличаются от значения по умолчанию.
	if req.CompanySize != "" && req.CompanySize != models.CompanySizeAny {
		key += "-" + req.CompanySize
	}
	if req.Location != "" {
		key += "-" + req.Location
	}
	if req.Specialization != "" {
		spec := slugify(req.Specialization)
		if len(spec) > specializationKeyLimit {
			spec = strings.Trim(spec[:specializationKeyLimit], "-")
		}
		if spec != "" {
			key += "-" + spec
		}
	}

	return key
}

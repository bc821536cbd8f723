package models

import (
	"fmt"
	"strings"
)

// Значения по умолчанию для необязательных полей запроса.
const (
	DefaultLevel   = "Middle"
	DefaultCompany = "стартап"
)

// GenerationRequest - входной запрос на генерацию профиля профессии.
// Считается неизменяемым после Normalize.
type GenerationRequest struct {
	Profession     string `json:"profession"`
	Level          string `json:"level,omitempty"`
	Company        string `json:"company,omitempty"`
	CompanySize    string `json:"companySize,omitempty"`
	Location       string `json:"location,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	WithAudio      bool   `json:"withAudio,omitempty"`
}

// Normalize подставляет значения по умолчанию и обрезает пробелы.
func (r *GenerationRequest) Normalize() {
	r.Profession = strings.TrimSpace(r.Profession)
	r.Specialization = strings.TrimSpace(r.Specialization)
	if strings.TrimSpace(r.Level) == "" {
		r.Level = DefaultLevel
	}
	if strings.TrimSpace(r.Company) == "" {
		r.Company = DefaultCompany
	}
}

// Validate проверяет обязательные поля и допустимость модификаторов.
// Возвращает ErrValidation с пояснением.
func (r *GenerationRequest) Validate() error {
	if r.Profession == "" {
		return fmt.Errorf("%w: поле profession обязательно", ErrValidation)
	}
	switch r.CompanySize {
	case "", CompanySizeStartup, CompanySizeMedium, CompanySizeLarge, CompanySizeAny:
	default:
		return fmt.Errorf("%w: недопустимый companySize %q", ErrValidation, r.CompanySize)
	}
	switch r.Location {
	case "", LocationMoscow, LocationSPB, LocationOther, LocationRemote:
	default:
		return fmt.Errorf("%w: недопустимый location %q", ErrValidation, r.Location)
	}
	return nil
}

// ModifiersOf возвращает модификаторы запроса для сохранения в артефакте.
func (r *GenerationRequest) ModifiersOf() Modifiers {
	return Modifiers{
		CompanySize:    r.CompanySize,
		Location:       r.Location,
		Specialization: r.Specialization,
	}
}

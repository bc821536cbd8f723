package models

import "time"

// Возможные значения модификаторов запроса.
const (
	CompanySizeStartup = "startup"
	CompanySizeMedium  = "medium"
	CompanySizeLarge   = "large"
	CompanySizeAny     = "any"

	LocationMoscow = "moscow"
	LocationSPB    = "spb"
	LocationOther  = "other"
	LocationRemote = "remote"
)

// Уровни конкуренции на рынке вакансий.
const (
	CompetitionHigh    = "high"
	CompetitionMedium  = "medium"
	CompetitionLow     = "low"
	CompetitionUnknown = "unknown"
)

// Ожидаемые размеры секций профиля (контракт генерации текста).
const (
	ScheduleLen   = 6
	BenefitsLen   = 4
	CareerPathLen = 4
	MaxImages     = 4
	MaxVideos     = 6
)

// ScheduleEntry - одна запись таймлайна рабочего дня.
type ScheduleEntry struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// DialogLine - реплика в сценке "день из жизни".
type DialogLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// CareerStage - ступень линейного карьерного пути.
type CareerStage struct {
	Position    string `json:"position"`
	Period      string `json:"period"`
	Description string `json:"description,omitempty"`
}

// CareerPath - одна ветка дерева развития с актуальным числом вакансий.
type CareerPath struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills,omitempty"`
	Vacancies   int      `json:"vacancies"`
}

// CareerTree - расширенный вариант карьерного пути: несколько направлений роста.
type CareerTree struct {
	Paths []CareerPath `json:"paths"`
}

// MarketStats - статистика рынка вакансий по профессии.
type MarketStats struct {
	Vacancies     int      `json:"vacancies"`
	Competition   string   `json:"competition"`
	AverageSalary *int     `json:"averageSalary,omitempty"`
	TopEmployers  []string `json:"topEmployers,omitempty"`
}

// Video - короткое видео о профессии.
type Video struct {
	Title   string `json:"title"`
	Channel string `json:"channel,omitempty"`
	URL     string `json:"url"`
}

// AudioClip - озвучка одной записи расписания.
type AudioClip struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// Modifiers - модификаторы, с которыми был сгенерирован профиль.
// Сохраняются в артефакте, чтобы клиент видел контекст генерации.
type Modifiers struct {
	CompanySize    string `json:"companySize,omitempty"`
	Location       string `json:"location,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// ProfessionContent - результат первой (текстовой) стадии генерации.
// Схема валидируется на границе, а не доверяется ответу модели.
type ProfessionContent struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Schedule    []ScheduleEntry `json:"schedule"`
	Stack       []string        `json:"stack"`
	Benefits    []string        `json:"benefits"`
	CareerPath  []CareerStage   `json:"careerPath"`
	Dialog      []DialogLine    `json:"dialog"`
}

// Profession - итоговый артефакт генерации: слитые результаты всех продюсеров.
// После записи в кеш считается неизменяемым снапшотом; обогащение аудио
// перезаписывает ключ целиком (read-modify-write).
type Profession struct {
	Profession  string          `json:"profession"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Level       string          `json:"level"`
	Company     string          `json:"company"`
	Schedule    []ScheduleEntry `json:"schedule"`
	Stack       []string        `json:"stack"`
	Benefits    []string        `json:"benefits"`
	CareerPath  []CareerStage   `json:"careerPath"`
	CareerTree  *CareerTree     `json:"careerTree"`
	Dialog      []DialogLine    `json:"dialog"`
	Images      []string        `json:"images"`
	Market      MarketStats     `json:"market"`
	Videos      []Video         `json:"videos"`
	Audio       []AudioClip     `json:"audio,omitempty"`
	IsPartial   bool            `json:"isPartial,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Modifiers   Modifiers       `json:"modifiers"`
}

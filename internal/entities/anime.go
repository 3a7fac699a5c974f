package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// DateSentinel marks an aired date the API did not provide.
const DateSentinel = "N/A"

// NamedEntity is one named reference (a studio, genre or streaming service).
type NamedEntity struct {
	Name string `json:"name"`
}

// NamedList stores a slice of named references as a JSON text column.
type NamedList []NamedEntity

// Value implements driver.Valuer.
func (l NamedList) Value() (driver.Value, error) {
	if l == nil {
		l = NamedList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *NamedList) Scan(value any) error {
	if value == nil {
		*l = NamedList{}
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return errors.New("unsupported column type for NamedList")
	}
}

// Names returns just the names, in stored order.
func (l NamedList) Names() []string {
	names := make([]string, 0, len(l))
	for _, e := range l {
		names = append(names, e.Name)
	}
	return names
}

// StringList stores a slice of strings as a JSON text column, preserving
// order.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return errors.New("unsupported column type for StringList")
	}
}

// Anime is one row of the local catalog, keyed by its MyAnimeList id. The
// id comes from the API, so the primary key is never auto-generated.
type Anime struct {
	MALID         int        `gorm:"column:mal_id;primaryKey;autoIncrement:false" json:"mal_id"`
	URL           string     `gorm:"size:500" json:"url,omitempty"`
	Title         string     `gorm:"size:500;index" json:"title"`
	TitleEnglish  string     `gorm:"size:500" json:"title_english,omitempty"`
	TitleJapanese string     `gorm:"size:500" json:"title_japanese,omitempty"`
	TitleSynonyms StringList `gorm:"type:text" json:"title_synonyms,omitempty"`

	// Episodes is nil while the API does not know the final count, which
	// is the norm for currently-airing shows.
	Episodes *int   `json:"episodes"`
	Status   string `gorm:"size:50" json:"status,omitempty"`
	Airing   bool   `gorm:"index" json:"airing"`

	// Aired fields hold the DateSentinel when the API omits them.
	AiredFrom   string `gorm:"size:50" json:"aired_from"`
	AiredTo     string `gorm:"size:50" json:"aired_to"`
	AiredString string `gorm:"size:100" json:"aired_string"`

	Duration   string  `gorm:"size:50" json:"duration,omitempty"`
	Rating     string  `gorm:"size:100" json:"rating,omitempty"`
	Score      float64 `json:"score"`
	ScoredBy   int     `json:"scored_by"`
	Synopsis   string  `gorm:"type:text" json:"synopsis,omitempty"`
	Background string  `gorm:"type:text" json:"background,omitempty"`
	Season     string  `gorm:"size:20" json:"season,omitempty"`
	Year       int     `json:"year,omitempty"`

	ImageURL      string `gorm:"size:500" json:"image_url,omitempty"`
	SmallImageURL string `gorm:"size:500" json:"small_image_url,omitempty"`
	LargeImageURL string `gorm:"size:500" json:"large_image_url,omitempty"`

	BroadcastDay      string `gorm:"size:20" json:"broadcast_day,omitempty"`
	BroadcastTime     string `gorm:"size:20" json:"broadcast_time,omitempty"`
	BroadcastTimezone string `gorm:"size:50" json:"broadcast_timezone,omitempty"`
	BroadcastString   string `gorm:"size:100" json:"broadcast_string,omitempty"`

	Studios   NamedList `gorm:"type:text" json:"studios,omitempty"`
	Genres    NamedList `gorm:"type:text" json:"genres,omitempty"`
	Streaming NamedList `gorm:"type:text" json:"streaming,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Anime) TableName() string {
	return "anime_info"
}

// DisplayTitle prefers the English title when the API provides one.
func (a *Anime) DisplayTitle() string {
	if a.TitleEnglish != "" {
		return a.TitleEnglish
	}
	return a.Title
}

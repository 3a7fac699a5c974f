package jikan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aniping/aniping/internal/entities"
)

// ErrMissingID is returned when a record lacks the identifying mal_id.
var ErrMissingID = errors.New("record missing mal_id")

// ParseAnime decodes a raw JSON anime record into a catalog entity. Both
// response shapes are accepted: the bare object and the API's
// {"data": {...}} envelope.
func ParseAnime(raw []byte) (*entities.Anime, error) {
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		MALID int             `json:"mal_id"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode anime record: %w", err)
	}
	if len(envelope.Data) > 0 && envelope.MALID == 0 {
		raw = envelope.Data
	}

	var record Anime
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode anime record: %w", err)
	}
	return record.ToEntity()
}

// ToEntity converts the wire record into a catalog row. Every optional
// nested block defaults safely: a missing aired block yields the "N/A"
// sentinels, a missing broadcast or images block yields empty strings.
func (a *Anime) ToEntity() (*entities.Anime, error) {
	if a.MALID <= 0 {
		return nil, ErrMissingID
	}

	record := &entities.Anime{
		MALID:         a.MALID,
		URL:           a.URL,
		Title:         a.Title,
		TitleEnglish:  a.TitleEnglish,
		TitleJapanese: a.TitleJapanese,
		TitleSynonyms: entities.StringList(a.TitleSynonyms),
		Episodes:      a.Episodes,
		Status:        a.Status,
		Airing:        a.Airing,
		AiredFrom:     entities.DateSentinel,
		AiredTo:       entities.DateSentinel,
		AiredString:   entities.DateSentinel,
		Duration:      a.Duration,
		Rating:        a.Rating,
		Score:         a.Score,
		ScoredBy:      a.ScoredBy,
		Synopsis:      a.Synopsis,
		Background:    a.Background,
		Season:        a.Season,
		Year:          a.Year,
		Studios:       toNamedList(a.Studios),
		Genres:        toNamedList(a.Genres),
		Streaming:     toNamedList(a.Streaming),
	}

	if a.Images != nil && a.Images.JPG != nil {
		record.ImageURL = a.Images.JPG.ImageURL
		record.SmallImageURL = a.Images.JPG.SmallImageURL
		record.LargeImageURL = a.Images.JPG.LargeImageURL
	}

	if a.Aired != nil {
		if a.Aired.From != "" {
			record.AiredFrom = a.Aired.From
		}
		if a.Aired.To != "" {
			record.AiredTo = a.Aired.To
		}
		if a.Aired.String != "" {
			record.AiredString = a.Aired.String
		}
	}

	if a.Broadcast != nil {
		record.BroadcastDay = a.Broadcast.Day
		record.BroadcastTime = a.Broadcast.Time
		record.BroadcastTimezone = a.Broadcast.Timezone
		record.BroadcastString = a.Broadcast.String
	}

	return record, nil
}

func toNamedList(refs []namedRef) entities.NamedList {
	list := make(entities.NamedList, 0, len(refs))
	for _, ref := range refs {
		list = append(list, entities.NamedEntity{Name: ref.Name})
	}
	return list
}

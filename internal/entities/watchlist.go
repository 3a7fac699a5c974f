package entities

import "time"

// WatchStatus is the user-visible tracking state of a watch-list entry.
type WatchStatus string

const (
	StatusWatching    WatchStatus = "Watching"
	StatusCompleted   WatchStatus = "Completed"
	StatusDropped     WatchStatus = "Dropped"
	StatusRewatching  WatchStatus = "Re-watching"
	StatusOnHold      WatchStatus = "On-Hold"
	StatusPlanToWatch WatchStatus = "Plan to Watch"
)

// ValidWatchStatus reports whether s is one of the known statuses.
func ValidWatchStatus(s WatchStatus) bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusDropped,
		StatusRewatching, StatusOnHold, StatusPlanToWatch:
		return true
	}
	return false
}

// WatchListEntry links one user to one catalog row. The (user_id, mal_id)
// pair is the primary key, so the same show can appear on a list only once.
type WatchListEntry struct {
	UserID          uint        `gorm:"primaryKey" json:"user_id"`
	MALID           int         `gorm:"column:mal_id;primaryKey" json:"mal_id"`
	EpisodesWatched int         `gorm:"not null;default:0" json:"episodes_watched"`
	Status          WatchStatus `gorm:"size:20;not null" json:"status"`

	Anime Anime `gorm:"foreignKey:MALID;references:MALID" json:"anime,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WatchListEntry) TableName() string {
	return "watch_list"
}

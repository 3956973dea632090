package models

import "time"

type KeystrokeKind string

const (
	KeystrokeInsert  KeystrokeKind = "insert"
	KeystrokeDelete  KeystrokeKind = "delete"
	KeystrokeReplace KeystrokeKind = "replace"
)

func (k KeystrokeKind) Valid() bool {
	return k == KeystrokeInsert || k == KeystrokeDelete || k == KeystrokeReplace
}

// KeystrokeEvent is one edit observed on the answer editor.
// Value is empty for deletes; Length is unused for inserts.
type KeystrokeEvent struct {
	Kind                KeystrokeKind `json:"kind" gorm:"size:10;not null" validate:"required,keystroke_kind"`
	Position            int           `json:"position" gorm:"not null" validate:"min=0"`
	Value               string        `json:"value,omitempty" gorm:"type:text"`
	Length              int           `json:"length,omitempty" validate:"min=0"`
	RelativeTimestampMs int64         `json:"relative_timestamp_ms" gorm:"not null" validate:"min=0"`
}

// KeystrokeRecord is the persisted form of a KeystrokeEvent. BatchSeq and Ordinal keep the
// emission order so ties on the timestamp can be broken after a round trip through storage.
type KeystrokeRecord struct {
	ID       uint `gorm:"primaryKey"`
	AnswerID uint `gorm:"not null;uniqueIndex:idx_keystroke_answer_order,priority:1"`
	BatchSeq int  `gorm:"not null;uniqueIndex:idx_keystroke_answer_order,priority:2"`
	Ordinal  int  `gorm:"not null;uniqueIndex:idx_keystroke_answer_order,priority:3"`

	KeystrokeEvent `gorm:"embedded"`

	CreatedAt time.Time
}

func (KeystrokeRecord) TableName() string {
	return "keystroke_events"
}

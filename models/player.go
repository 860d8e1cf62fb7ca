package models

import "time"

// Player is an entrant. NameKana carries the reading used for the
// alphabetical (kana) ordering of the lower Round2 bracket.
type Player struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	NameKana  string    `json:"name_kana"`
	CreatedAt time.Time `json:"created_at"`
}

package models

// YontakuPlayerResult is a player's paper qualifying result. Rank is dense
// (1..N, no gaps or duplicates); Tiebreaker gives a total order even when
// raw scores tie, so every downstream sort is deterministic.
type YontakuPlayerResult struct {
	ID         int `json:"id"`
	PlayerID   int `json:"player_id"`
	Score      int `json:"score"`
	Tiebreaker int `json:"tiebreaker"`
	Rank       int `json:"rank"`
}

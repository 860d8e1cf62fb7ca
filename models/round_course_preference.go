package models

// RoundCoursePreference is a player's ordered choice of Round3 courses.
// The four choices must reference distinct Round3 matches. Editable until
// the preference lock setting is switched on by an operator.
type RoundCoursePreference struct {
	ID       int `json:"id"`
	PlayerID int `json:"player_id"`
	Choice1  int `json:"choice1"`
	Choice2  int `json:"choice2"`
	Choice3  int `json:"choice3"`
	Choice4  int `json:"choice4"`
}

// Choices returns the four match IDs in preference order.
func (p RoundCoursePreference) Choices() [4]int {
	return [4]int{p.Choice1, p.Choice2, p.Choice3, p.Choice4}
}

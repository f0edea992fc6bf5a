package model

// DuelResult is the outcome of one duel between a challenger and a target.
type DuelResult struct {
	ChallengerID string  `json:"challenger_id"`
	TargetID     string  `json:"target_id"`
	WinnerID     string  `json:"winner_id"`
	LoserID      string  `json:"loser_id"`
	WinChance    float64 `json:"win_chance"`
	Roll         float64 `json:"roll"`
	MuteMinutes  int     `json:"mute_minutes"`
	ExpGain      int     `json:"exp_gain"`
	MoneyGain    int     `json:"money_gain"`
}

// SignResult is the outcome of a daily sign-in.
type SignResult struct {
	UserID     string `json:"user_id"`
	Streak     int    `json:"streak"`
	Base       int    `json:"base"`
	Bonus      int    `json:"bonus"`
	Lucky      bool   `json:"lucky"`
	LuckyGain  int    `json:"lucky_gain"`
	Total      int    `json:"total"`
	MoneyNow   int    `json:"money_now"`
	FirstEver  bool   `json:"first_ever"`
}

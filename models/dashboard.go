package models

// Dashboard is the composed read-only view for a single user
type Dashboard struct {
	User          UserPublic     `json:"user"`
	Groups        []*GroupDetail `json:"groups"`
	ActiveBets    []*BetDetail   `json:"active_bets"`
	CompletedBets []*BetDetail   `json:"completed_bets"`
}

package models

type DashboardStats struct {
	UsersTotal       int `json:"users_total"`
	BannedUsers      int `json:"banned_users"`
	SessionsTotal    int `json:"sessions_total"`
	ActiveSessions   int `json:"active_sessions"`
	ResultsTotal     int `json:"results_total"`
	UnsettledResults int `json:"unsettled_results"`
}

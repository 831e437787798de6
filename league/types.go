package league

// Bootstrap is the subset of the bootstrap-static document the service reads
type Bootstrap struct {
	Elements     []Element     `json:"elements"`
	Teams        []Team        `json:"teams"`
	ElementTypes []ElementType `json:"element_types"`
}

// Element is a player as published by the game API
type Element struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	Team        int    `json:"team"`
	ElementType int    `json:"element_type"`
	NowCost     int    `json:"now_cost"`
	TotalPoints int    `json:"total_points"`
	Minutes     int    `json:"minutes"`
	GoalsScored int    `json:"goals_scored"`
	Assists     int    `json:"assists"`
	CleanSheets int    `json:"clean_sheets"`
	Form        string `json:"form"`
}

// Team is a Premier League club
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// ElementType is a playing position
type ElementType struct {
	ID                int    `json:"id"`
	SingularNameShort string `json:"singular_name_short"`
}

// Player is an element joined with its team and position
type Player struct {
	ID            int      `json:"id"`
	WebName       string   `json:"web_name"`
	Team          int      `json:"team"`
	TeamName      string   `json:"team_name"`
	TeamShortName string   `json:"team_short_name"`
	ElementType   int      `json:"element_type"`
	Position      string   `json:"position"`
	NowCost       int      `json:"now_cost"`
	TotalPoints   int      `json:"total_points"`
	Minutes       int      `json:"minutes"`
	GoalsScored   int      `json:"goals_scored"`
	Assists       int      `json:"assists"`
	CleanSheets   int      `json:"clean_sheets"`
	Form          string   `json:"form"`
	ValueScore    *float64 `json:"value_score,omitempty"`
}

// Standings is the classic league standings document
type Standings struct {
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Standings struct {
		Results []Manager `json:"results"`
	} `json:"standings"`
}

// Manager is one row of the league table
type Manager struct {
	Entry      int        `json:"entry"`
	EntryName  string     `json:"entry_name"`
	PlayerName string     `json:"player_name"`
	Rank       int        `json:"rank"`
	LastRank   int        `json:"last_rank"`
	Total      int        `json:"total"`
	EventTotal int        `json:"event_total"`
	History    []Gameweek `json:"history"`
}

// Gameweek is a manager's result for one event
type Gameweek struct {
	Event              int    `json:"event"`
	Points             int    `json:"points"`
	TotalPoints        int    `json:"total_points"`
	Rank               *int   `json:"rank"`
	OverallRank        int    `json:"overall_rank"`
	Bank               int    `json:"bank"`
	Value              int    `json:"value"`
	EventTransfers     int    `json:"event_transfers"`
	EventTransfersCost int    `json:"event_transfers_cost"`
	PointsOnBench      int    `json:"points_on_bench"`
	ManagerName        string `json:"manager_name,omitempty"`
	ManagerID          int    `json:"manager_id,omitempty"`
}

type entryHistory struct {
	Current []Gameweek `json:"current"`
}

package models

// AgentStatus is the orchestrator's view of one registered agent.
type AgentStatus struct {
	Name        string  `json:"name"`
	Strategy    string  `json:"strategy"`
	Online      bool    `json:"online"`
	Active      bool    `json:"active"`
	TotalTrades int     `json:"total_trades"`
	NetPnL      float64 `json:"net_pnl"`
}

// SystemStatus aggregates every registered agent.
type SystemStatus struct {
	TotalAgents  int     `json:"total_agents"`
	ActiveAgents int     `json:"active_agents"`
	OnlineAgents int     `json:"online_agents"`
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	NetPnL       float64 `json:"net_pnl"`
}

// BatchResult is the per agent outcome of a batch operation.
type BatchResult struct {
	Agent   string `json:"agent"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

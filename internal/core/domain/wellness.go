package domain

// WorkloadLevel buckets the open ticket count.
type WorkloadLevel string

const (
	WorkloadLow      WorkloadLevel = "baixa"
	WorkloadModerate WorkloadLevel = "moderada"
	WorkloadHigh     WorkloadLevel = "alta"
	WorkloadCritical WorkloadLevel = "crítica"
)

// BalanceStatus buckets the balance score.
type BalanceStatus string

const (
	BalanceExcellent BalanceStatus = "excelente"
	BalanceGood      BalanceStatus = "bom"
	BalanceAttention BalanceStatus = "atenção"
	BalanceCritical  BalanceStatus = "crítico"
)

// WellnessInput is what the scorer looks at.
type WellnessInput struct {
	OpenTickets     int
	SLACompliance   float64
	ExceededTickets int
	EstimatedHours  float64
}

// Wellness is an additive workload score. BurnoutRisk is a bounded
// heuristic in [0, 100], not a probability.
type Wellness struct {
	BurnoutRisk   float64       `json:"burnoutRisk"`
	BalanceScore  float64       `json:"balanceScore"`
	WorkloadLevel WorkloadLevel `json:"workloadLevel"`
	BalanceStatus BalanceStatus `json:"balanceStatus"`
	Messages      []string      `json:"messages"`
}

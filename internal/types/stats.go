package types

// StatsSummary reduces a call collection into the queue report headline
// numbers. All rates are 0 when Total is 0.
type StatsSummary struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Abandoned int `json:"abandoned"`

	AnswerRate     int     `json:"answerRate"`     // percent, rounded
	AvgWaitSeconds float64 `json:"avgWaitSeconds"`
	SLARate        int     `json:"slaRate"`        // percent answered within threshold
	ASASeconds     float64 `json:"asaSeconds"`     // average speed of answer
	AbandonRate    float64 `json:"abandonRate"`    // percent, one decimal

	ClientCallbacks    int `json:"clientCallbacks"`
	AgentCallbacks     int `json:"agentCallbacks"`
	UnhandledAbandoned int `json:"unhandledAbandoned"`
}

package settings

import "time"

// ReportSettings are one user's saved report preferences. They are the
// only thing this service persists; reconstructed calls never are.
type ReportSettings struct {
	UserID              string    `json:"userId" dynamodbav:"UserID"` // partition key
	Queues              []string  `json:"queues" dynamodbav:"Queues"`
	MinNumberLength     int       `json:"minNumberLength" dynamodbav:"MinNumberLength"`
	SLAThresholdSeconds int       `json:"slaThresholdSeconds" dynamodbav:"SLAThresholdSeconds"`
	CallbackWindowHours int       `json:"callbackWindowHours" dynamodbav:"CallbackWindowHours"`
	EmailRecipients     []string  `json:"emailRecipients" dynamodbav:"EmailRecipients"`
	UpdatedAt           time.Time `json:"updatedAt" dynamodbav:"UpdatedAt"`
}

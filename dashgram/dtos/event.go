package dtos

//
// Events DTOs
//

// EventDTO struct mapping events json
type EventDTO struct {
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  int64                  `json:"timestamp"`
	SequenceID int64                  `json:"sequenceId"`
	Level      int                    `json:"-"`
}

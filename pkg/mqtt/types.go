package mqtt

import (
	"encoding/json"
	"time"
)

const DefaultTopic = "nergy/tibbernobo/profile"

// Payload describes a week profile that was installed on the hub.
type Payload struct {
	ProfileID     string    `json:"profileId"`
	Name          string    `json:"name"`
	ReferenceDate string    `json:"referenceDate"`
	PricedDay     string    `json:"pricedDay"`
	Profile       []string  `json:"profile"`
	Intervals     int       `json:"intervals"`
	Time          time.Time `json:"time"`
}

func FormatPayload(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

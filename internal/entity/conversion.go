package entity

import "time"

// Conversion is one journaled result shown to a user.
type Conversion struct {
	ID       uint64    `json:"id"`
	UserID   int64     `json:"userID"`
	Time     time.Time `json:"time"`
	RateDate time.Time `json:"rateDate"`
	Base     Currency  `json:"base"`
	Target   Currency  `json:"target"`
	Amount   float64   `json:"amount"`
	Result   float64   `json:"result"`
}

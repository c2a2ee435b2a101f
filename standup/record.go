// Package standup holds the daily submission model and the rules that keep
// one submission per user per day.
package standup

import (
	"errors"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Column order of a submission row in the store.
const (
	ColDate = iota
	ColUsername
	ColYesterday
	ColToday
	ColBlockers
	ColTime
	NumColumns
)

// Header is the first row of the store. It is never treated as data.
var Header = []string{"Date", "Username", "Yesterday", "Today", "Blockers", "Time"}

var ErrAlreadySubmitted = errors.New("standup already submitted today")

// Answers are the three free text fields of the standup form.
type Answers struct {
	Yesterday string
	Today     string
	Blockers  string
}

type Record struct {
	Date     string
	Username string
	Answers  Answers
	Time     string
}

// NewRecord stamps answers with the date and time of now in loc.
func NewRecord(username string, answers Answers, now time.Time, loc *time.Location) Record {
	local := now.In(loc)
	return Record{
		Date:     local.Format(DateLayout),
		Username: username,
		Answers:  answers,
		Time:     local.Format(TimeLayout),
	}
}

// Row returns the record in store column order.
func (r Record) Row() []string {
	return []string{r.Date, r.Username, r.Answers.Yesterday, r.Answers.Today, r.Answers.Blockers, r.Time}
}

// RecordFromRow parses a store row. Short rows are padded with empty fields.
func RecordFromRow(row []string) Record {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		Date:     cell(ColDate),
		Username: cell(ColUsername),
		Answers: Answers{
			Yesterday: cell(ColYesterday),
			Today:     cell(ColToday),
			Blockers:  cell(ColBlockers),
		},
		Time: cell(ColTime),
	}
}

package calendar

import (
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/sandeepkv93/taskremind/internal/model"
)

const productID = "-//taskremind//EN"

// recurrenceRule renders the task's series as an RFC 5545 RRULE value, or ""
// for one-off tasks.
func recurrenceRule(task model.Task) string {
	if !task.Recurring || task.FrequencyMinutes <= 0 {
		return ""
	}
	opt := rrule.ROption{Freq: rrule.MINUTELY, Interval: task.FrequencyMinutes}
	return opt.RRuleString()
}

func toVEvent(task model.Task, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, EventUID(task.ID))
	ve.Props.SetText(ical.PropSummary, task.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, task.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, task.EndTime.UTC())
	if task.Details != "" {
		ve.Props.SetText(ical.PropDescription, task.Details)
	}
	if rule := recurrenceRule(task); rule != "" {
		p := ical.NewProp(ical.PropRecurrenceRule)
		p.Value = rule
		ve.Props.Set(p)
	}
	return ve
}

func newCalendar(task model.Task, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, toVEvent(task, stamp))
	return cal
}

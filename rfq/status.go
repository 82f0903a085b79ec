// Package rfq is the supplier side of the request-for-quotation workflow.
package rfq

import "marketplace-portal/model"

type Status string

const (
	Pending   Status = "PENDING"
	Responded Status = "RESPONDED"
	Approved  Status = "APPROVED"
	Completed Status = "COMPLETED"
	Rejected  Status = "REJECTED"
)

// rank orders the main line PENDING → RESPONDED → APPROVED → COMPLETED.
var rank = map[Status]int{
	Pending:   0,
	Responded: 1,
	Approved:  2,
	Completed: 3,
}

func StatusOf(o model.RFQOffer) Status {
	return Status(o.Status)
}

func (s Status) Known() bool {
	_, ok := rank[s]
	return ok || s == Rejected
}

// CanQuote: a quote can be sent while pending and edited while responded.
func (s Status) CanQuote() bool {
	return s == Pending || s == Responded
}

func (s Status) CanComplete() bool {
	return s == Approved
}

// CanChat: chat opens once the offer has left PENDING.
func (s Status) CanChat() bool {
	return s.Known() && s != Pending
}

func (s Status) Terminal() bool {
	return s == Completed || s == Rejected
}

// CanTransition reports whether the server moving an offer from one status
// to another respects the workflow. Staying put is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	if to == Rejected {
		return from == Pending
	}
	if from == Rejected {
		return false
	}
	rf, okFrom := rank[from]
	rt, okTo := rank[to]
	return okFrom && okTo && rt > rf
}

// Action is one button on an offer card.
type Action struct {
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Label   string `json:"label,omitempty"`
}

type Actions struct {
	Quote    Action `json:"quote"`
	Complete Action `json:"complete"`
	Chat     Action `json:"chat"`
}

// ActionsFor returns the buttons the supplier sees for an offer. A
// completed offer shows a disabled "Completed" marker where the complete
// button was.
func ActionsFor(o model.RFQOffer) Actions {
	s := StatusOf(o)
	var a Actions

	if s.CanQuote() {
		label := "Submit Quote"
		if s == Responded {
			label = "Edit Quote"
		}
		a.Quote = Action{Visible: true, Enabled: true, Label: label}
	}

	switch s {
	case Approved:
		a.Complete = Action{Visible: true, Enabled: true, Label: "Complete"}
	case Completed:
		a.Complete = Action{Visible: true, Enabled: false, Label: "Completed"}
	}

	if s.CanChat() {
		a.Chat = Action{Visible: true, Enabled: true, Label: "Chat"}
	}
	return a
}

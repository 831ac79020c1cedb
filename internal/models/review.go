package models

// ProgramType names what a review is about.
type ProgramType string

const (
	ProgramWebinar ProgramType = "webinar"
	ProgramEvent   ProgramType = "event"
)

// Valid reports whether p is a known program type.
func (p ProgramType) Valid() bool {
	return p == ProgramWebinar || p == ProgramEvent
}

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a moderator may move a review from s to to.
// Only pending reviews are decided; approved and rejected are terminal.
func (s ReviewStatus) CanTransition(to ReviewStatus) bool {
	return s == ReviewStatusPending && (to == ReviewStatusApproved || to == ReviewStatusRejected)
}

// Review is visitor feedback on a webinar or event.
type Review struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Rating      int          `json:"rating"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	ProgramType ProgramType  `json:"programType"`
	Status      ReviewStatus `json:"status"`
	CreatedAt   Timestamp    `json:"createdAt"`
	UpdatedAt   *Timestamp   `json:"updatedAt,omitempty"`
}

package nats

import (
	"strings"

	"github.com/google/uuid"
)

// SubjectTaskEvents is the prefix of per-owner task event subjects: tasks.events.<ownerId>.
const SubjectTaskEvents = "tasks.events"

// TaskEventSubject returns the subject events for ownerID are published on.
func TaskEventSubject(ownerID uuid.UUID) string {
	return SubjectTaskEvents + "." + ownerID.String()
}

// ownerFromSubject extracts the owner id from a task event subject.
func ownerFromSubject(subject string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(subject, SubjectTaskEvents+".")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

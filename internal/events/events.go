// Package events publishes domain events to the configured broker.
// Publishing is best effort: a broker failure is logged and never
// fails the request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/taskcourse/apiserver/internal/mq"
	"github.com/taskcourse/apiserver/types"
)

// Channels events are published on.
const (
	ChannelUserRegistered     = "user.registered"
	ChannelCourseRegistration = "course.registration"
)

// UserRegisteredEvent is emitted when an account is created.
type UserRegisteredEvent struct {
	UserID    int       `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// CourseRegistrationEvent is emitted when a student registers for a course.
type CourseRegistrationEvent struct {
	UserID    int       `json:"user_id"`
	CourseID  int       `json:"course_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits domain events. A nil Publisher or a Publisher over a
// nil MQ is a no-op, so callers never need to branch on whether events
// are enabled.
type Publisher struct {
	mq *mq.MQ
}

// NewPublisher constructs a Publisher over the given MQ. mq may be nil.
func NewPublisher(queue *mq.MQ) *Publisher {
	return &Publisher{mq: queue}
}

// UserRegistered emits a user.registered event.
func (p *Publisher) UserRegistered(ctx context.Context, user types.User) {
	p.publish(ctx, ChannelUserRegistered, UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Timestamp: time.Now().UTC(),
	}, map[string]string{"user_id": strconv.Itoa(user.ID)})
}

// CourseRegistered emits a course.registration event.
func (p *Publisher) CourseRegistered(ctx context.Context, userID, courseID int) {
	p.publish(ctx, ChannelCourseRegistration, CourseRegistrationEvent{
		UserID:    userID,
		CourseID:  courseID,
		Timestamp: time.Now().UTC(),
	}, map[string]string{
		"user_id":   strconv.Itoa(userID),
		"course_id": strconv.Itoa(courseID),
	})
}

func (p *Publisher) publish(ctx context.Context, channel string, event any, attrs map[string]string) {
	if p == nil || p.mq == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s: %v", channel, err)
		return
	}
	if _, err := p.mq.Publish(ctx, channel, data, attrs); err != nil {
		log.Printf("events: publish %s: %v", channel, err)
	}
}

// ABOUTME: WorkoutLog model with exercises and sets for tribe workout tracking.
// ABOUTME: WorkoutKind is a closed enum; every reward rule switches over it.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkoutKind identifies which kind of session a log records.
type WorkoutKind int

const (
	KindPlanA WorkoutKind = iota
	KindPlanB
	KindCustom
	KindCommitment
)

// AllWorkoutKinds lists every kind in display order.
var AllWorkoutKinds = []WorkoutKind{KindPlanA, KindPlanB, KindCustom, KindCommitment}

// String returns the canonical short name stored in the database.
func (k WorkoutKind) String() string {
	switch k {
	case KindPlanA:
		return "A"
	case KindPlanB:
		return "B"
	case KindCustom:
		return "Custom"
	case KindCommitment:
		return "Commitment"
	default:
		return fmt.Sprintf("WorkoutKind(%d)", int(k))
	}
}

// Label returns a human-friendly name.
func (k WorkoutKind) Label() string {
	switch k {
	case KindPlanA:
		return "Plan A"
	case KindPlanB:
		return "Plan B"
	case KindCustom:
		return "Custom"
	case KindCommitment:
		return "Commitment"
	default:
		return k.String()
	}
}

// ParseWorkoutKind accepts the stored name and common CLI spellings.
func ParseWorkoutKind(s string) (WorkoutKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "plan-a", "plana", "plan_a":
		return KindPlanA, nil
	case "b", "plan-b", "planb", "plan_b":
		return KindPlanB, nil
	case "custom":
		return KindCustom, nil
	case "commitment", "commit":
		return KindCommitment, nil
	}
	return 0, fmt.Errorf("unknown workout kind: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k WorkoutKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *WorkoutKind) UnmarshalText(b []byte) error {
	parsed, err := ParseWorkoutKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MinStreakMinutes is the shortest Custom session that counts toward streaks,
// weekly goals, and Custom points.
const MinStreakMinutes = 30

// Set is one set of an exercise.
type Set struct {
	Weight    float64 `json:"weight" yaml:"weight"`
	Reps      int     `json:"reps" yaml:"reps"`
	Completed bool    `json:"completed" yaml:"completed"`
}

// Exercise is a named movement with its ordered sets.
type Exercise struct {
	Name string `json:"name" yaml:"name"`
	Sets []Set  `json:"sets" yaml:"sets"`
}

// WorkoutLog represents one recorded activity session.
type WorkoutLog struct {
	ID              uuid.UUID   `json:"id" yaml:"id"`
	User            string      `json:"user" yaml:"user"`
	TribeID         string      `json:"tribe_id,omitempty" yaml:"tribe_id,omitempty"`
	Date            time.Time   `json:"date" yaml:"date"`
	Kind            WorkoutKind `json:"kind" yaml:"kind"`
	DurationMinutes int         `json:"duration_minutes" yaml:"duration_minutes"`
	Calories        *int        `json:"calories,omitempty" yaml:"calories,omitempty"`
	Vibes           *int        `json:"vibes,omitempty" yaml:"vibes,omitempty"`
	CustomActivity  string      `json:"custom_activity,omitempty" yaml:"custom_activity,omitempty"`
	Exercises       []Exercise  `json:"exercises,omitempty" yaml:"exercises,omitempty"`
	CreatedAt       time.Time   `json:"created_at" yaml:"created_at"`
}

// NewWorkoutLog creates a new WorkoutLog with generated UUID and current timestamp.
func NewWorkoutLog(user string, kind WorkoutKind) *WorkoutLog {
	now := time.Now()
	return &WorkoutLog{
		ID:        uuid.New(),
		User:      user,
		Kind:      kind,
		Date:      now,
		CreatedAt: now,
	}
}

// WithDuration sets the duration in minutes.
func (w *WorkoutLog) WithDuration(minutes int) *WorkoutLog {
	w.DurationMinutes = minutes
	return w
}

// WithCalories sets the calorie count.
func (w *WorkoutLog) WithCalories(calories int) *WorkoutLog {
	w.Calories = &calories
	return w
}

// WithVibes sets the intensity score.
func (w *WorkoutLog) WithVibes(vibes int) *WorkoutLog {
	w.Vibes = &vibes
	return w
}

// WithDate sets a custom session timestamp.
func (w *WorkoutLog) WithDate(t time.Time) *WorkoutLog {
	w.Date = t
	return w
}

// WithTribe scopes the log to a tribe.
func (w *WorkoutLog) WithTribe(tribeID string) *WorkoutLog {
	w.TribeID = tribeID
	return w
}

// WithActivity names a Custom session (e.g. "Running").
func (w *WorkoutLog) WithActivity(activity string) *WorkoutLog {
	w.CustomActivity = activity
	return w
}

// WithExercise appends an exercise.
func (w *WorkoutLog) WithExercise(e Exercise) *WorkoutLog {
	w.Exercises = append(w.Exercises, e)
	return w
}

// IsCommitment reports whether the log is a zero-value pledge.
func (w *WorkoutLog) IsCommitment() bool {
	return w.Kind == KindCommitment
}

// IsStreakEligible reports whether the log counts toward a personal streak.
// Commitments never count; Custom sessions need at least MinStreakMinutes.
func (w *WorkoutLog) IsStreakEligible() bool {
	switch w.Kind {
	case KindPlanA, KindPlanB:
		return true
	case KindCustom:
		return w.DurationMinutes >= MinStreakMinutes
	default:
		return false
	}
}

// Volume returns Σ weight×reps over completed sets.
func (w *WorkoutLog) Volume() float64 {
	var total float64
	for _, e := range w.Exercises {
		for _, s := range e.Sets {
			if s.Completed {
				total += s.Weight * float64(s.Reps)
			}
		}
	}
	return total
}

// Title returns the display name of the session.
func (w *WorkoutLog) Title() string {
	if w.Kind == KindCustom && w.CustomActivity != "" {
		return w.CustomActivity
	}
	return w.Kind.Label()
}

package domain

import (
	"time"
)

// GymLog is one performed exercise recorded by its owner.
type GymLog struct {
	ID           string    `bson:"_id" json:"id"`
	OwnerID      string    `bson:"ownerId" json:"ownerId"`
	ExerciseName string    `bson:"exerciseName" json:"exerciseName"` // free text, not a catalog reference
	Sets         int       `bson:"sets" json:"sets"`
	Reps         int       `bson:"reps" json:"reps"`
	Weight       float64   `bson:"weight" json:"weight"`
	Notes        *string   `bson:"notes,omitempty" json:"notes,omitempty"`
	PerformedAt  time.Time `bson:"performedAt" json:"performedAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// GymLogPatch is a partial log edit. Only Notes may be nulled.
type GymLogPatch struct {
	ExerciseName Optional[string]
	Sets         Optional[int]
	Reps         Optional[int]
	Weight       Optional[float64]
	Notes        Optional[string]
	PerformedAt  Optional[time.Time]
}

func (p GymLogPatch) Validate() []string {
	var details []string
	if p.ExerciseName.Set && (p.ExerciseName.Null || p.ExerciseName.Value == "") {
		details = append(details, "exercise_name: cannot be empty")
	}
	if p.Sets.Set && (p.Sets.Null || p.Sets.Value <= 0) {
		details = append(details, "sets: must be greater than 0")
	}
	if p.Reps.Set && (p.Reps.Null || p.Reps.Value <= 0) {
		details = append(details, "reps: must be greater than 0")
	}
	if p.Sets.Present() && p.Sets.Value > MaxCount {
		details = append(details, TooLarge("sets"))
	}
	if p.Reps.Present() && p.Reps.Value > MaxCount {
		details = append(details, TooLarge("reps"))
	}
	if p.Weight.Set && (p.Weight.Null || p.Weight.Value < 0) {
		details = append(details, "weight: must be 0 or greater")
	}
	if p.PerformedAt.Null {
		details = append(details, "performed_at: cannot be null")
	}
	return details
}

func (p GymLogPatch) Apply(l *GymLog) {
	p.ExerciseName.ApplyTo(&l.ExerciseName)
	p.Sets.ApplyTo(&l.Sets)
	p.Reps.ApplyTo(&l.Reps)
	p.Weight.ApplyTo(&l.Weight)
	p.Notes.ApplyToPtr(&l.Notes)
	p.PerformedAt.ApplyTo(&l.PerformedAt)
}

// internal/domain/workout_plan.go
package domain

import (
	"time"
)

// WorkoutPlan is the plan header: a reusable template owned by one account.
type WorkoutPlan struct {
	ID              string     `bson:"_id" json:"id"`
	OwnerID         string     `bson:"ownerId" json:"ownerId"`
	Name            string     `bson:"name" json:"name"`
	Description     string     `bson:"description" json:"description"`
	MuscleTypes     []BodyPart `bson:"muscleTypes" json:"muscleTypes"` // at least one
	Difficulty      Difficulty `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	DurationMinutes *int       `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	IsPublic        bool       `bson:"isPublic" json:"isPublic"`
	// Revision increases on every mutation of the plan or its item list.
	Revision  int       `bson:"revision" json:"revision"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PlanPatch is a partial header update. Difficulty and DurationMinutes may be nulled.
type PlanPatch struct {
	Name            Optional[string]
	Description     Optional[string]
	MuscleTypes     Optional[[]BodyPart]
	Difficulty      Optional[Difficulty]
	DurationMinutes Optional[int]
	IsPublic        Optional[bool]
}

func (p PlanPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Description.Set && !p.MuscleTypes.Set &&
		!p.Difficulty.Set && !p.DurationMinutes.Set && !p.IsPublic.Set
}

func (p PlanPatch) Validate() []string {
	var details []string
	if p.Name.Set && (p.Name.Null || p.Name.Value == "") {
		details = append(details, "name: cannot be empty")
	}
	if p.Description.Null {
		details = append(details, "description: cannot be null")
	}
	if p.MuscleTypes.Set {
		if p.MuscleTypes.Null || len(p.MuscleTypes.Value) == 0 {
			details = append(details, "muscle_types: must contain at least 1 item")
		}
		for _, m := range p.MuscleTypes.Value {
			if !m.Valid() {
				details = append(details, "muscle_types: "+string(m)+" is not a valid body part")
			}
		}
	}
	if p.Difficulty.Present() && !p.Difficulty.Value.Valid() {
		details = append(details, "difficulty: must be beginner, intermediate or advanced")
	}
	if p.DurationMinutes.Present() && p.DurationMinutes.Value <= 0 {
		details = append(details, "duration_minutes: must be greater than 0")
	}
	if p.DurationMinutes.Present() && p.DurationMinutes.Value > MaxCount {
		details = append(details, TooLarge("duration_minutes"))
	}
	if p.IsPublic.Null {
		details = append(details, "is_public: cannot be null")
	}
	return details
}

// PlanDetail is the plan read model: header plus ordered, exercise-joined items.
type PlanDetail struct {
	WorkoutPlan
	Items []PlanItemDetail `json:"items"`
}

// Apply copies the patched fields onto plan. Revision and timestamps are left to the store.
func (p PlanPatch) Apply(plan *WorkoutPlan) {
	p.Name.ApplyTo(&plan.Name)
	p.Description.ApplyTo(&plan.Description)
	if p.MuscleTypes.Present() {
		plan.MuscleTypes = append([]BodyPart(nil), p.MuscleTypes.Value...)
	}
	if p.Difficulty.Set {
		plan.Difficulty = p.Difficulty.Value
	}
	p.DurationMinutes.ApplyToPtr(&plan.DurationMinutes)
	p.IsPublic.ApplyTo(&plan.IsPublic)
}

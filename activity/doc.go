// Package activity persists logged workouts and their squad check-ins. The
// Repository covers the activities table while ApplyCheckin runs inside the
// caller's transaction so a check-in message, its activity_checkins row and
// the squad and member totals are written together.
package activity

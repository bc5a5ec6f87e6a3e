// Package policy is the pure authorization decision table. It holds no state
// and touches no database: callers resolve ownership and enrollment facts and
// pass them in, so every decision is reproducible in a unit test.
package policy

// Roles as stored on the user row.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Action identifies what the actor is trying to do.
type Action string

const (
	ActionCreateClassroom Action = "create_classroom"
	ActionEditClassroom   Action = "edit_classroom"
	ActionDeleteClassroom Action = "delete_classroom"
	ActionCreateLesson    Action = "create_lesson"
	ActionEditLesson      Action = "edit_lesson"
	ActionDeleteLesson    Action = "delete_lesson"
	ActionViewLesson      Action = "view_lesson"
	ActionEnroll          Action = "enroll"
	ActionSubmit          Action = "submit"
	ActionGrade           Action = "grade"
)

// Deny reasons.
const (
	ReasonInsufficientPermission = "insufficient_permission"
	ReasonNotClassroomOwner      = "not_classroom_owner"
	ReasonNotEnrolled            = "not_enrolled"
)

// Actor is the authenticated user making the request.
type Actor struct {
	ID   uint
	Role string
}

// Target carries the ownership and membership facts of the entity acted upon.
// TeacherID is the owning teacher of the target's classroom; Enrolled reports
// whether the actor has an enrollment in that classroom.
type Target struct {
	TeacherID uint
	Enrolled  bool
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide evaluates the role×action matrix. Precedence: admin bypass, then
// ownership, then enrollment, else deny. Callers must re-check on every
// request since role and ownership can change between requests.
func Decide(actor Actor, action Action, target Target) Decision {
	if actor.Role == RoleAdmin {
		return allow()
	}

	switch actor.Role {
	case RoleTeacher:
		switch action {
		case ActionCreateClassroom:
			return allow()
		case ActionEditClassroom, ActionDeleteClassroom,
			ActionCreateLesson, ActionEditLesson, ActionDeleteLesson,
			ActionViewLesson, ActionGrade:
			if target.TeacherID == actor.ID {
				return allow()
			}
			return deny(ReasonNotClassroomOwner)
		}
		// A teacher is not a student: enroll and submit stay denied.
		return deny(ReasonInsufficientPermission)

	case RoleStudent:
		switch action {
		case ActionEnroll:
			return allow()
		case ActionSubmit, ActionViewLesson:
			if target.Enrolled {
				return allow()
			}
			return deny(ReasonNotEnrolled)
		}
		return deny(ReasonInsufficientPermission)
	}

	return deny(ReasonInsufficientPermission)
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	owner := Actor{ID: 1, Role: RoleTeacher}
	otherTeacher := Actor{ID: 2, Role: RoleTeacher}
	student := Actor{ID: 3, Role: RoleStudent}
	admin := Actor{ID: 4, Role: RoleAdmin}

	owned := Target{TeacherID: owner.ID}
	enrolled := Target{TeacherID: owner.ID, Enrolled: true}

	allActions := []Action{
		ActionCreateClassroom, ActionEditClassroom, ActionDeleteClassroom,
		ActionCreateLesson, ActionEditLesson, ActionDeleteLesson,
		ActionViewLesson, ActionEnroll, ActionSubmit, ActionGrade,
	}

	t.Run("admin is permitted everything", func(t *testing.T) {
		for _, action := range allActions {
			d := Decide(admin, action, Target{TeacherID: 99})
			assert.True(t, d.Allowed, "admin should be allowed %s", action)
		}
	})

	t.Run("teacher ownership matrix", func(t *testing.T) {
		tests := []struct {
			name    string
			actor   Actor
			action  Action
			target  Target
			allowed bool
			reason  string
		}{
			{"create classroom always allowed", otherTeacher, ActionCreateClassroom, Target{}, true, ""},
			{"edit own classroom", owner, ActionEditClassroom, owned, true, ""},
			{"edit foreign classroom", otherTeacher, ActionEditClassroom, owned, false, ReasonNotClassroomOwner},
			{"delete own classroom", owner, ActionDeleteClassroom, owned, true, ""},
			{"delete foreign classroom", otherTeacher, ActionDeleteClassroom, owned, false, ReasonNotClassroomOwner},
			{"create lesson in own classroom", owner, ActionCreateLesson, owned, true, ""},
			{"delete lesson in foreign classroom", otherTeacher, ActionDeleteLesson, owned, false, ReasonNotClassroomOwner},
			{"grade in own classroom", owner, ActionGrade, owned, true, ""},
			{"grade in foreign classroom", otherTeacher, ActionGrade, owned, false, ReasonNotClassroomOwner},
			{"teacher cannot enroll", owner, ActionEnroll, owned, false, ReasonInsufficientPermission},
			{"teacher cannot submit even in own classroom", owner, ActionSubmit, owned, false, ReasonInsufficientPermission},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := Decide(tt.actor, tt.action, tt.target)
				assert.Equal(t, tt.allowed, d.Allowed)
				if !tt.allowed {
					assert.Equal(t, tt.reason, d.Reason)
				}
			})
		}
	})

	t.Run("student matrix", func(t *testing.T) {
		tests := []struct {
			name    string
			action  Action
			target  Target
			allowed bool
			reason  string
		}{
			{"enroll allowed", ActionEnroll, Target{TeacherID: owner.ID}, true, ""},
			{"submit when enrolled", ActionSubmit, enrolled, true, ""},
			{"submit when not enrolled", ActionSubmit, owned, false, ReasonNotEnrolled},
			{"view lesson when enrolled", ActionViewLesson, enrolled, true, ""},
			{"view lesson when not enrolled", ActionViewLesson, owned, false, ReasonNotEnrolled},
			{"edit classroom denied", ActionEditClassroom, enrolled, false, ReasonInsufficientPermission},
			{"delete lesson denied", ActionDeleteLesson, enrolled, false, ReasonInsufficientPermission},
			{"grade denied", ActionGrade, enrolled, false, ReasonInsufficientPermission},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := Decide(student, tt.action, tt.target)
				assert.Equal(t, tt.allowed, d.Allowed)
				if !tt.allowed {
					assert.Equal(t, tt.reason, d.Reason)
				}
			})
		}
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		d := Decide(Actor{ID: 9, Role: "janitor"}, ActionViewLesson, enrolled)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonInsufficientPermission, d.Reason)
	})
}

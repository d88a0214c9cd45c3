package employee

import (
	"errors"
	"testing"
	"time"
)

func validAttributes() Attributes {
	hired := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	return Attributes{
		ID:         1,
		FirstName:  "Laura",
		LastName:   "Diaz",
		Email:      "laura.diaz@empresa.com",
		Title:      " Contadora ",
		Department: DeptFinance,
		Status:     "activo",
		HiredAt:    hired,
	}
}

func TestNew_DefaultsUpdatedAtToHireDate(t *testing.T) {
	t.Parallel()

	e, err := New(validAttributes())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !e.UpdatedAt().Equal(e.HiredAt()) {
		t.Fatalf("expected updatedAt to default to hire date")
	}
	if e.Title() != "Contadora" {
		t.Fatalf("expected trimmed title, got %q", e.Title())
	}
}

func TestNew_RejectsInvalidAttributes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Attributes)
		want   error
	}{
		{"email", func(a *Attributes) { a.Email = "laura" }, ErrInvalidEmail},
		{"department", func(a *Attributes) { a.Department = "Sistemas" }, ErrInvalidDepartment},
		{"status", func(a *Attributes) { a.Status = "retirado" }, ErrInvalidStatus},
		{"first name", func(a *Attributes) { a.FirstName = "L" }, ErrInvalidFirstName},
		{"hire date", func(a *Attributes) { a.HiredAt = time.Time{} }, ErrInvalidHireDate},
		{"dependent age", func(a *Attributes) {
			a.Profile.Dependents = []Dependent{{Name: "Hijo", Age: -1}}
		}, ErrInvalidProfile},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			attrs := validAttributes()
			tc.mutate(&attrs)
			if _, err := New(attrs); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRehydrate_RequiresID(t *testing.T) {
	t.Parallel()

	attrs := validAttributes()
	attrs.ID = 0
	if _, err := Rehydrate(attrs); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestMutators_StampUpdatedAt(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dept, _ := NewDepartment(DeptAudit)
	email, _ := NewEmail("ldiaz@empresa.com")

	steps := []struct {
		name  string
		apply func(e *Employee, at time.Time)
		check func(e *Employee) bool
	}{
		{"deactivate", func(e *Employee, at time.Time) { e.Deactivate(at) }, func(e *Employee) bool { return e.Status().IsInactive() }},
		{"activate", func(e *Employee, at time.Time) { e.Activate(at) }, func(e *Employee) bool { return e.Status().IsActive() }},
		{"suspend", func(e *Employee, at time.Time) { e.Suspend(at) }, func(e *Employee) bool { return e.Status().IsSuspended() }},
		{"review", func(e *Employee, at time.Time) { e.MarkInReview(at) }, func(e *Employee) bool { return e.Status().IsInReview() }},
		{"department", func(e *Employee, at time.Time) { e.ChangeDepartment(dept, at) }, func(e *Employee) bool { return e.Department() == dept }},
		{"title", func(e *Employee, at time.Time) { e.ChangeTitle("Auditora", at) }, func(e *Employee) bool { return e.Title() == "Auditora" }},
		{"email", func(e *Employee, at time.Time) { e.ChangeEmail(email, at) }, func(e *Employee) bool { return e.Email() == email }},
		{"toggle conflict", func(e *Employee, at time.Time) { e.ToggleConflictOfInterest(at) }, func(e *Employee) bool { return e.HasConflictOfInterest() }},
		{"set conflict", func(e *Employee, at time.Time) { e.SetConflictOfInterest(false, at) }, func(e *Employee) bool { return !e.HasConflictOfInterest() }},
	}

	e, err := New(validAttributes())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for i, step := range steps {
		at := base.Add(time.Duration(i) * time.Hour)
		step.apply(e, at)
		if !step.check(e) {
			t.Fatalf("%s: state was not applied", step.name)
		}
		if !e.UpdatedAt().Equal(at) {
			t.Fatalf("%s: expected updatedAt %v, got %v", step.name, at, e.UpdatedAt())
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	e, _ := New(validAttributes())
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	err := e.UpdateProfile(Profile{
		Education:  &Education{Level: " Profesional ", Institution: "Universidad Nacional", Degree: "Contaduría", GraduationYear: 2015},
		Dependents: []Dependent{{Name: "Sofia", Relationship: "Hija", Age: 6}},
	}, at)
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	p := e.Profile()
	if p.Education.Level != "Profesional" {
		t.Fatalf("expected trimmed level, got %q", p.Education.Level)
	}
	if !p.HasDependents() {
		t.Fatalf("expected dependents")
	}

	p.Dependents[0].Age = 99
	if e.Profile().Dependents[0].Age != 6 {
		t.Fatalf("profile getter must return a copy")
	}
	if !e.UpdatedAt().Equal(at) {
		t.Fatalf("expected updatedAt to be stamped")
	}
}

func TestAttributes_RoundTrip(t *testing.T) {
	t.Parallel()

	e, _ := New(validAttributes())
	again, err := Rehydrate(e.Attributes())
	if err != nil {
		t.Fatalf("Rehydrate returned error: %v", err)
	}
	if again.Email() != e.Email() || again.Name() != e.Name() || again.Department() != e.Department() {
		t.Fatalf("rehydrated employee differs")
	}
}

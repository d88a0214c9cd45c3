package employee

import (
	"errors"
	"strings"
	"testing"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
)

func TestNewEmail(t *testing.T) {
	t.Parallel()

	if _, err := NewEmail("a@b"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail for a@b, got %v", err)
	}

	email, err := NewEmail("  Juan.Perez@empresa.com ")
	if err != nil {
		t.Fatalf("NewEmail returned error: %v", err)
	}
	if email.String() != "juan.perez@empresa.com" {
		t.Fatalf("expected normalized address, got %q", email.String())
	}
	if email.Domain() != "empresa.com" {
		t.Fatalf("expected domain empresa.com, got %q", email.Domain())
	}
	if email.LocalPart() != "juan.perez" {
		t.Fatalf("unexpected local part %q", email.LocalPart())
	}
	if !email.IsCorporate() {
		t.Fatalf("expected corporate domain")
	}
	if email.Provider() != "corporativo" || email.SecurityLevel() != "alto" {
		t.Fatalf("unexpected provider classification %q/%q", email.Provider(), email.SecurityLevel())
	}
	if email.Masked() != "jua***@empresa.com" {
		t.Fatalf("unexpected mask %q", email.Masked())
	}
}

func TestNewEmail_Lengths(t *testing.T) {
	t.Parallel()

	longLocal := strings.Repeat("a", 65) + "@empresa.com"
	_, err := NewEmail(longLocal)
	var invalid *domainerr.InvalidValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
	if !strings.Contains(invalid.Reason, "local part") {
		t.Fatalf("expected local part reason, got %q", invalid.Reason)
	}
	if !errors.Is(err, domainerr.ErrValidation) {
		t.Fatalf("expected validation kind")
	}
}

func TestEmail_StructuralEquality(t *testing.T) {
	t.Parallel()

	a, _ := NewEmail("ana.gomez@gmail.com")
	b, _ := NewEmail("ANA.GOMEZ@gmail.com")
	if a != b || !a.Equal(b) {
		t.Fatalf("expected equal emails")
	}
	if a.IsCorporate() {
		t.Fatalf("gmail must not be corporate")
	}
	if a.Provider() != "gmail" {
		t.Fatalf("expected gmail provider, got %q", a.Provider())
	}
}

func TestEmail_MatchesName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		address string
		want    bool
	}{
		{"juan.perez@empresa.com", true},
		{"juanperez@empresa.com", true},
		{"perez.juan@empresa.com", true},
		{"jperez@empresa.com", true},
		{"juanp@empresa.com", true},
		{"contabilidad@empresa.com", false},
	}
	for _, tc := range cases {
		email, err := NewEmail(tc.address)
		if err != nil {
			t.Fatalf("NewEmail(%q): %v", tc.address, err)
		}
		if got := email.MatchesName("Juan", "Perez"); got != tc.want {
			t.Errorf("MatchesName(%q) = %v, want %v", tc.address, got, tc.want)
		}
	}
}

func TestSuggestEmail(t *testing.T) {
	t.Parallel()

	email, err := SuggestEmail("Maria Jose", "Lopez")
	if err != nil {
		t.Fatalf("SuggestEmail returned error: %v", err)
	}
	if email.String() != "mariajose.lopez@empresa.com" {
		t.Fatalf("unexpected suggestion %q", email.String())
	}
}

func TestNewPersonName(t *testing.T) {
	t.Parallel()

	if _, err := NewPersonName("J", "Perez"); !errors.Is(err, ErrInvalidFirstName) {
		t.Fatalf("expected ErrInvalidFirstName, got %v", err)
	}
	if _, err := NewPersonName("Juan", "P3rez"); !errors.Is(err, ErrInvalidLastName) {
		t.Fatalf("expected ErrInvalidLastName, got %v", err)
	}

	name, err := NewPersonName(" Juan ", "Pérez")
	if err != nil {
		t.Fatalf("NewPersonName returned error: %v", err)
	}
	if name.Full() != "Juan Pérez" {
		t.Fatalf("unexpected full name %q", name.Full())
	}
	if name.Formal() != "PÉREZ, Juan" {
		t.Fatalf("unexpected formal name %q", name.Formal())
	}
	if name.Initials() != "JP" {
		t.Fatalf("unexpected initials %q", name.Initials())
	}
	if name.Short() != "Juan P." {
		t.Fatalf("unexpected short name %q", name.Short())
	}
}

func TestPersonName_MatchesSearch(t *testing.T) {
	t.Parallel()

	name, _ := NewPersonName("Juan Carlos", "Perez")
	for _, term := range []string{"carlos", "jp", "perez juan", "Juan Carlos Perez"} {
		if !name.MatchesSearch(term) {
			t.Errorf("expected %q to match", term)
		}
	}
	if name.MatchesSearch("maria") {
		t.Errorf("unexpected match for maria")
	}

	short, _ := NewPersonName("Ana", "Ruiz")
	if !short.MatchesSearch("a.r") {
		t.Errorf("expected initials with dots to match")
	}
}

func TestPersonNameFromText(t *testing.T) {
	t.Parallel()

	name, err := PersonNameFromText("Maria del Mar Soto")
	if err != nil {
		t.Fatalf("PersonNameFromText returned error: %v", err)
	}
	if name.First() != "Maria del Mar" || name.Last() != "Soto" {
		t.Fatalf("unexpected split %q / %q", name.First(), name.Last())
	}
	if _, err := PersonNameFromText("Maria"); err == nil {
		t.Fatalf("expected error for single word")
	}

	reserved, _ := NewPersonName("Admin", "Sistema")
	if !reserved.IsReserved() {
		t.Fatalf("expected reserved name")
	}
}

func TestNewDepartment(t *testing.T) {
	t.Parallel()

	if _, err := NewDepartment("Sistemas"); !errors.Is(err, ErrInvalidDepartment) {
		t.Fatalf("expected ErrInvalidDepartment, got %v", err)
	}

	tech, err := NewDepartment("  Tecnología ")
	if err != nil {
		t.Fatalf("NewDepartment returned error: %v", err)
	}
	if tech.Code() != "TI" || tech.Group() != "tecnico" {
		t.Fatalf("unexpected catalog data %q/%q", tech.Code(), tech.Group())
	}
	if tech.CanViewFullReports() || tech.CanManagePersonnel() || tech.CanAccessFinancialData() {
		t.Fatalf("tecnología must not have capability flags")
	}
	if tech.AccessTier() != AccessTierLow {
		t.Fatalf("expected low tier, got %s", tech.AccessTier())
	}

	admin, _ := NewDepartment(DeptAdministration)
	if admin.AccessTier() != AccessTierHigh {
		t.Fatalf("expected high tier for administración")
	}
	if _, ok := admin.Parent(); ok {
		t.Fatalf("administración must be the root")
	}

	audit, _ := NewDepartment(DeptAudit)
	if audit.AccessTier() != AccessTierMedium || !audit.CanAccessFinancialData() {
		t.Fatalf("unexpected auditoría capabilities")
	}

	mkt, _ := NewDepartment(DeptMarketing)
	parent, ok := mkt.Parent()
	if !ok || parent.String() != DeptOperations {
		t.Fatalf("expected marketing to report to operaciones, got %v", parent)
	}

	if len(Departments()) != 10 {
		t.Fatalf("expected 10 departments")
	}
}

func TestNewAccountStatus(t *testing.T) {
	t.Parallel()

	if _, err := NewAccountStatus("borrado"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	s, err := NewAccountStatus("ACTIVO")
	if err != nil {
		t.Fatalf("NewAccountStatus returned error: %v", err)
	}
	if s.String() != StatusActive || !s.CanGenerateReports() {
		t.Fatalf("unexpected status %q", s.String())
	}

	review, _ := NewAccountStatus("En-Revision")
	if !review.CanAccessSystem() || review.CanGenerateReports() {
		t.Fatalf("unexpected en-revision capabilities")
	}

	suspended, _ := NewAccountStatus(StatusSuspended)
	if suspended.CanAccessSystem() {
		t.Fatalf("suspended must not access the system")
	}
}

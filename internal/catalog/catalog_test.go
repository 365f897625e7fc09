package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDoctor(t *testing.T) {
	c := Default()

	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{name: "exact display name", input: "Dr.Badr", want: "Dr.Badr", found: true},
		{name: "case insensitive display name", input: "  dr.JONES ", want: "Dr.jones", found: true},
		{name: "substring of one display name", input: "ella", want: "Dr.Ella", found: true},
		{name: "specialty key", input: "general dentistry", want: "Dr.Badr", found: true},
		{name: "specialty key mixed case", input: "ORTHODONTICS", want: "Dr.jones", found: true},
		{name: "specialty substring", input: "pediatric", want: "Dr.Ella", found: true},
		{name: "ambiguous substring takes first in order", input: "dr.", want: "Dr.Badr", found: true},
		{name: "no match", input: "Dr.Who", found: false},
		{name: "empty input", input: "   ", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ResolveDoctor(tt.input)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got.DisplayName)
			}
		})
	}
}

func TestResolveDoctorPrefersDisplayNameOverSpecialty(t *testing.T) {
	c, err := New(
		[]Doctor{
			{Key: "surgery for kim", DisplayName: "Dr.Lee"},
			{Key: "orthodontics", DisplayName: "Dr.Kim"},
		},
		[]Service{{Key: "Cleaning", DisplayName: "Cleaning", DurationMinutes: 30}},
	)
	require.NoError(t, err)

	got, ok := c.ResolveDoctor("kim")
	require.True(t, ok)
	assert.Equal(t, "Dr.Kim", got.DisplayName)
}

func TestResolveServiceIsExact(t *testing.T) {
	c := Default()

	svc, ok := c.ResolveService("Cleaning")
	require.True(t, ok)
	assert.Equal(t, 60, svc.DurationMinutes)
	assert.True(t, svc.Price.Equal(decimal.NewFromInt(150)))

	_, ok = c.ResolveService("cleaning")
	assert.False(t, ok, "service lookup must not fold case")

	_, ok = c.ResolveService("Unknown")
	assert.False(t, ok)
}

func TestDescribeIsStable(t *testing.T) {
	c := Default()
	want := "Doctors: Dr.Badr, Dr.jones, Dr.Ella. Services: Cleaning ($150, 60 min), " +
		"Fillings and Crowns ($500, 90 min), General Consultation ($100, 30 min), " +
		"Dental Implants and Bridges ($1000, 10 min)."
	assert.Equal(t, want, c.Describe())
	assert.Equal(t, c.Describe(), c.Describe())
}

func TestPriceText(t *testing.T) {
	assert.Equal(t, "$150", Service{Price: decimal.NewFromInt(150)}.PriceText())
	assert.Equal(t, "$99.50", Service{Price: decimal.RequireFromString("99.5")}.PriceText())
}

func TestNewValidation(t *testing.T) {
	okDoctors := []Doctor{{Key: "general", DisplayName: "Dr.A"}}
	okServices := []Service{{Key: "Cleaning", DisplayName: "Cleaning", DurationMinutes: 30}}

	tests := []struct {
		name     string
		doctors  []Doctor
		services []Service
		wantErr  error
	}{
		{name: "no doctors", services: okServices, wantErr: ErrEmptyCatalog},
		{name: "no services", doctors: okDoctors, wantErr: ErrEmptyCatalog},
		{name: "doctor without name", doctors: []Doctor{{Key: "x"}}, services: okServices, wantErr: ErrInvalidEntry},
		{name: "duplicate doctor", doctors: []Doctor{{Key: "a", DisplayName: "Dr.A"}, {Key: "b", DisplayName: "dr.a"}}, services: okServices, wantErr: ErrInvalidEntry},
		{name: "zero duration", doctors: okDoctors, services: []Service{{Key: "X", DisplayName: "X"}}, wantErr: ErrInvalidEntry},
		{name: "negative price", doctors: okDoctors, services: []Service{{Key: "X", DisplayName: "X", DurationMinutes: 5, Price: decimal.NewFromInt(-1)}}, wantErr: ErrInvalidEntry},
		{name: "duplicate service", doctors: okDoctors, services: append(okServices, okServices[0]), wantErr: ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.doctors, tt.services)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestServiceKeysInCatalogOrder(t *testing.T) {
	assert.Equal(t, []string{"Cleaning", "Fillings and Crowns", "General Consultation", "Dental Implants and Bridges"}, Default().ServiceKeys())
}

func TestCatalogCopiesAreIndependent(t *testing.T) {
	c := Default()
	doctors := c.Doctors()
	doctors[0].DisplayName = "changed"
	assert.Equal(t, "Dr.Badr", c.Doctors()[0].DisplayName)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("CLINIC_LEAD_DOCTOR", "Dr.Noor")
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
doctors:
  - specialty: endodontics
    name: ${CLINIC_LEAD_DOCTOR}
services:
  - key: Root Canal
    duration_minutes: 120
    price: "850.50"
  - key: Whitening
    name: Teeth Whitening
    duration_minutes: 45
    price: "300"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	doc, ok := c.ResolveDoctor("noor")
	require.True(t, ok)
	assert.Equal(t, "Dr.Noor", doc.DisplayName)

	svc, ok := c.ResolveService("Root Canal")
	require.True(t, ok)
	assert.Equal(t, "Root Canal", svc.DisplayName)
	assert.Equal(t, "$850.50", svc.PriceText())

	svc, ok = c.ResolveService("Whitening")
	require.True(t, ok)
	assert.Equal(t, "Teeth Whitening", svc.DisplayName)
}

func TestLoadRejectsBadPrice(t *testing.T) {
	_, err := Parse([]byte("doctors: [{specialty: a, name: Dr.A}]\nservices: [{key: X, duration_minutes: 10, price: free}]\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

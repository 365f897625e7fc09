// Package catalog holds the clinic's static table of doctors and services and
// resolves caller input against it.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Doctor is a staff member that can be booked. Key is the doctor's specialty.
type Doctor struct {
	Key         string
	DisplayName string
}

// Service is a bookable treatment.
type Service struct {
	Key             string
	DisplayName     string
	DurationMinutes int
	Price           decimal.Decimal
}

// PriceText renders the price the way it is spoken to callers ("$150", "$99.50").
func (s Service) PriceText() string {
	if s.Price.IsInteger() {
		return "$" + s.Price.String()
	}
	return "$" + s.Price.StringFixed(2)
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	doctors  []Doctor
	services []Service
	byKey    map[string]int
}

var (
	// ErrEmptyCatalog is returned when a catalog has no doctors or no services.
	ErrEmptyCatalog = errors.New("catalog: at least one doctor and one service are required")
	// ErrInvalidEntry is returned for malformed doctor or service entries.
	ErrInvalidEntry = errors.New("catalog: invalid entry")
)

// New validates the entries and builds a catalog. Order is preserved and
// determines which entry wins when several match.
func New(doctors []Doctor, services []Service) (*Catalog, error) {
	if len(doctors) == 0 || len(services) == 0 {
		return nil, ErrEmptyCatalog
	}

	seenDoctor := make(map[string]struct{}, len(doctors))
	for i, d := range doctors {
		if strings.TrimSpace(d.Key) == "" || strings.TrimSpace(d.DisplayName) == "" {
			return nil, fmt.Errorf("%w: doctor[%d] needs a key and a display name", ErrInvalidEntry, i)
		}
		name := normalize(d.DisplayName)
		if _, dup := seenDoctor[name]; dup {
			return nil, fmt.Errorf("%w: duplicate doctor %q", ErrInvalidEntry, d.DisplayName)
		}
		seenDoctor[name] = struct{}{}
	}

	byKey := make(map[string]int, len(services))
	for i, s := range services {
		if s.Key == "" || strings.TrimSpace(s.DisplayName) == "" {
			return nil, fmt.Errorf("%w: service[%d] needs a key and a display name", ErrInvalidEntry, i)
		}
		if s.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: service %q duration must be positive", ErrInvalidEntry, s.Key)
		}
		if s.Price.IsNegative() {
			return nil, fmt.Errorf("%w: service %q price must not be negative", ErrInvalidEntry, s.Key)
		}
		if _, dup := byKey[s.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate service %q", ErrInvalidEntry, s.Key)
		}
		byKey[s.Key] = i
	}

	return &Catalog{
		doctors:  append([]Doctor(nil), doctors...),
		services: append([]Service(nil), services...),
		byKey:    byKey,
	}, nil
}

// Default returns the clinic's built-in catalog.
func Default() *Catalog {
	c, err := New(
		[]Doctor{
			{Key: "general dentistry", DisplayName: "Dr.Badr"},
			{Key: "Orthodontics", DisplayName: "Dr.jones"},
			{Key: "Pediatric Dentistry", DisplayName: "Dr.Ella"},
		},
		[]Service{
			{Key: "Cleaning", DisplayName: "Cleaning", DurationMinutes: 60, Price: decimal.NewFromInt(150)},
			{Key: "Fillings and Crowns", DisplayName: "Fillings And Crowns", DurationMinutes: 90, Price: decimal.NewFromInt(500)},
			{Key: "General Consultation", DisplayName: "General Consultation", DurationMinutes: 30, Price: decimal.NewFromInt(100)},
			{Key: "Dental Implants and Bridges", DisplayName: "Dental Implants And Bridges", DurationMinutes: 10, Price: decimal.NewFromInt(1000)},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ResolveDoctor matches free text against the catalog. Display names are
// tried before specialty keys and exact matches before substrings; the first
// entry in catalog order wins within a pass.
func (c *Catalog) ResolveDoctor(freeText string) (Doctor, bool) {
	input := normalize(freeText)
	if input == "" {
		return Doctor{}, false
	}

	passes := []func(Doctor) bool{
		func(d Doctor) bool { return normalize(d.DisplayName) == input },
		func(d Doctor) bool { return normalize(d.Key) == input },
		func(d Doctor) bool { return strings.Contains(normalize(d.DisplayName), input) },
		func(d Doctor) bool { return strings.Contains(normalize(d.Key), input) },
	}
	for _, match := range passes {
		for _, d := range c.doctors {
			if match(d) {
				return d, true
			}
		}
	}
	return Doctor{}, false
}

// ResolveService looks up a service by its exact key.
func (c *Catalog) ResolveService(key string) (Service, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

// Doctors returns a copy of the doctor entries in catalog order.
func (c *Catalog) Doctors() []Doctor {
	return append([]Doctor(nil), c.doctors...)
}

// Services returns a copy of the service entries in catalog order.
func (c *Catalog) Services() []Service {
	return append([]Service(nil), c.services...)
}

// DoctorNames returns the display names in catalog order.
func (c *Catalog) DoctorNames() []string {
	names := make([]string, 0, len(c.doctors))
	for _, d := range c.doctors {
		names = append(names, d.DisplayName)
	}
	return names
}

// ServiceKeys returns the service keys in catalog order.
func (c *Catalog) ServiceKeys() []string {
	keys := make([]string, 0, len(c.services))
	for _, s := range c.services {
		keys = append(keys, s.Key)
	}
	return keys
}

// Describe renders the catalog as a single sentence for the voice assistant.
func (c *Catalog) Describe() string {
	services := make([]string, 0, len(c.services))
	for _, s := range c.services {
		services = append(services, fmt.Sprintf("%s (%s, %d min)", s.Key, s.PriceText(), s.DurationMinutes))
	}
	return fmt.Sprintf("Doctors: %s. Services: %s.",
		strings.Join(c.DoctorNames(), ", "),
		strings.Join(services, ", "),
	)
}

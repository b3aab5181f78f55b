// Package modcatalog holds the static catalog of vehicle modification
// services and their estimated labor hours. The catalog ships with built-in
// entries and can be replaced wholesale from a JSON file at startup.
package modcatalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"revamp/pkg/model"
)

// Built-in modification services offered by the workshop.
var defaultServices = []model.ModificationService{
	{ID: "engine-change", Name: "Engine Change", EstimatedHours: 16},
	{ID: "painting", Name: "Painting", EstimatedHours: 12},
	{ID: "interior-upgrade", Name: "Interior Upgrade", EstimatedHours: 8},
	{ID: "performance-tuning", Name: "Performance Tuning", EstimatedHours: 6},
	{ID: "body-kit-installation", Name: "Body Kit Installation", EstimatedHours: 10},
	{ID: "suspension-upgrade", Name: "Suspension Upgrade", EstimatedHours: 8},
	{ID: "wheels-tires", Name: "Wheels & Tires", EstimatedHours: 2},
	{ID: "audio-system", Name: "Audio System", EstimatedHours: 6},
}

type Catalog struct {
	services []model.ModificationService
	byKey    map[string]model.ModificationService
}

// NewDefault returns the catalog with the built-in service list.
func NewDefault() *Catalog {
	c, err := newCatalog(defaultServices)
	if err != nil {
		// The built-in list is a package invariant.
		panic(err)
	}
	return c
}

// LoadFromFile replaces the built-in catalog with entries from a JSON file
// containing an array of modification services.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modification catalog: %w", err)
	}

	var services []model.ModificationService
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("failed to parse modification catalog: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("modification catalog %s contains no services", path)
	}

	return newCatalog(services)
}

func newCatalog(services []model.ModificationService) (*Catalog, error) {
	byKey := make(map[string]model.ModificationService, len(services)*2)

	for _, svc := range services {
		if svc.ID == "" || svc.Name == "" {
			return nil, fmt.Errorf("modification service needs both id and name: %+v", svc)
		}
		if svc.EstimatedHours <= 0 {
			return nil, fmt.Errorf("modification service %s needs positive estimated hours", svc.ID)
		}

		idKey := normalizeKey(svc.ID)
		nameKey := normalizeKey(svc.Name)
		if _, dup := byKey[idKey]; dup {
			return nil, fmt.Errorf("duplicate modification service %s", svc.ID)
		}
		byKey[idKey] = svc
		if nameKey != idKey {
			if _, dup := byKey[nameKey]; dup {
				return nil, fmt.Errorf("duplicate modification service name %s", svc.Name)
			}
			byKey[nameKey] = svc
		}
	}

	return &Catalog{services: services, byKey: byKey}, nil
}

// Lookup resolves a modification by ID or display name, case-insensitively.
// Booking clients historically send display names, newer ones send IDs.
func (c *Catalog) Lookup(idOrName string) (model.ModificationService, bool) {
	svc, ok := c.byKey[normalizeKey(idOrName)]
	return svc, ok
}

// List returns every catalog entry in its declared order.
func (c *Catalog) List() []model.ModificationService {
	out := make([]model.ModificationService, len(c.services))
	copy(out, c.services)
	return out
}

func (c *Catalog) Len() int {
	return len(c.services)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

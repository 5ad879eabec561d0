package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/honeycarbs/hhnotify/internal/domain"
)

// Routing decides which Pachca discussion receives a vacancy's responses.
//
// Example ROUTING_FILE:
//
//	default_entity_id: 7431593
//	routes:
//	  - entity_id: 18381861
//	    vacancies: ["120065476", "118154065"]
type Routing struct {
	DefaultEntityID int64   `yaml:"default_entity_id"`
	Routes          []Route `yaml:"routes"`
}

// Route sends the listed vacancies to an alternate discussion
type Route struct {
	EntityID  int64    `yaml:"entity_id"`
	Vacancies []string `yaml:"vacancies"`
}

// LoadRoutingFile reads a YAML routing table
func LoadRoutingFile(path string) (Routing, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Routing{}, fmt.Errorf("read routing file: %w", err)
	}

	var r Routing
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Routing{}, fmt.Errorf("parse routing file: %w", err)
	}

	return r, r.Validate()
}

func (r Routing) Validate() error {
	if r.DefaultEntityID <= 0 {
		return fmt.Errorf("routing: default entity id must be positive")
	}
	for i, route := range r.Routes {
		if route.EntityID <= 0 {
			return fmt.Errorf("routing: route %d has no entity id", i)
		}
	}
	return nil
}

// ChannelFor returns the discussion for a vacancy; first matching route wins
func (r Routing) ChannelFor(vacancyID string) domain.Channel {
	id := strings.TrimSpace(vacancyID)
	for _, route := range r.Routes {
		for _, v := range route.Vacancies {
			if strings.TrimSpace(v) == id {
				return domain.Discussion(route.EntityID)
			}
		}
	}
	return domain.Discussion(r.DefaultEntityID)
}

package main

import (
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML document read by the master command:
//
//	stores:
//	  - name: Glyfada
//	    storeId: GLY
//	links:
//	  - name: Actual 2024
//	    url: https://example.com/pnl.xlsx
//	users:
//	  - email: manager@example.com
//	    role: client
//	    stores: [Glyfada]
//	    password: change-me-now
type seedFile struct {
	Stores []seedStore `yaml:"stores"`
	Links  []seedLink  `yaml:"links"`
	Users  []seedUser  `yaml:"users"`
}

type seedStore struct {
	Name    string `yaml:"name"`
	StoreID string `yaml:"storeId"`
}

type seedLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type seedUser struct {
	Email    string   `yaml:"email"`
	Name     string   `yaml:"name"`
	Role     string   `yaml:"role"`
	Stores   []string `yaml:"stores"`
	Password string   `yaml:"password"`
}

func readSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeedFile(data)
}

func parseSeedFile(data []byte) (*seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

// normalize trims and validates every entry in place.
func (f *seedFile) normalize() error {
	for i := range f.Stores {
		s := &f.Stores[i]
		s.Name = strings.TrimSpace(s.Name)
		s.StoreID = strings.TrimSpace(s.StoreID)
		if s.Name == "" || s.StoreID == "" {
			return fmt.Errorf("stores[%d]: name and storeId are required", i)
		}
	}
	for i := range f.Links {
		l := &f.Links[i]
		l.Name = strings.TrimSpace(l.Name)
		l.URL = strings.TrimSpace(l.URL)
		if l.Name == "" || l.URL == "" {
			return fmt.Errorf("links[%d]: name and url are required", i)
		}
	}
	for i := range f.Users {
		u := &f.Users[i]
		addr, err := mail.ParseAddress(strings.TrimSpace(u.Email))
		if err != nil {
			return fmt.Errorf("users[%d]: invalid email %q", i, u.Email)
		}
		u.Email = strings.ToLower(addr.Address)
		u.Name = strings.TrimSpace(u.Name)
		u.Role = domain.NormalizeRole(u.Role)
		if len(u.Password) < minPasswordLength {
			return fmt.Errorf("users[%d]: password must be at least %d characters", i, minPasswordLength)
		}
	}
	return nil
}

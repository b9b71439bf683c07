// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package session keeps track of the users signed in on this machine and
// which one of them is the primary user.
package session

import (
	"io/fs"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/configfile"
	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/envir"
	"go.jetify.com/nps/internal/goutil"
	"go.jetify.com/nps/internal/xdg"
)

type User struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty"`
}

func (u User) String() string {
	if u.Email == "" {
		return u.ID
	}
	return u.ID + " <" + u.Email + ">"
}

// file is the on-disk representation of the session.
type file struct {
	Primary string `json:"primary,omitempty" yaml:"primary,omitempty" toml:"primary,omitempty"`
	Users   []User `json:"users,omitempty" yaml:"users,omitempty" toml:"users,omitempty"`
}

type Store struct {
	path string
}

// DefaultPath is where the session lives unless NPS_SESSION_FILE says
// otherwise.
func DefaultPath() string {
	return envir.GetValueOrDefault(envir.NPSSessionFile, xdg.AppStatePath("session.json"))
}

func NewStore(path string) (*Store, error) {
	if !configfile.IsSupportedExtension(extension(path)) {
		return nil, usererr.New("unsupported session file %q, use .json, .yaml or .toml", path)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string { return s.path }

// Login signs u in, or updates its details if it already is, and makes it the
// primary user.
func (s *Store) Login(u User) error {
	if u.ID == "" {
		return usererr.New("user id must not be empty")
	}
	f, err := s.read()
	if err != nil {
		return err
	}
	_, i, found := lo.FindIndexOf(f.Users, func(existing User) bool { return existing.ID == u.ID })
	if found {
		f.Users[i] = u
	} else {
		f.Users = append(f.Users, u)
	}
	f.Primary = u.ID
	debug.Log("session: %s signed in", u.ID)
	return s.write(f)
}

// Logout signs id out. If it was the primary user, the first remaining user
// takes over.
func (s *Store) Logout(id string) error {
	f, err := s.read()
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(f.Users, func(u User) bool { return u.ID == id }) {
		return usererr.New("user %q is not signed in", id)
	}
	f.Users = lo.Reject(f.Users, func(u User, _ int) bool { return u.ID == id })
	if f.Primary == id {
		f.Primary = ""
		if len(f.Users) > 0 {
			f.Primary = f.Users[0].ID
		}
	}
	debug.Log("session: %s signed out, primary is now %q", id, f.Primary)
	return s.write(f)
}

// Switch makes an already signed-in user the primary one.
func (s *Store) Switch(id string) error {
	f, err := s.read()
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(f.Users, func(u User) bool { return u.ID == id }) {
		return usererr.WithHint(usererr.New("user %q is not signed in", id), "nps auth login %s", id)
	}
	f.Primary = id
	return s.write(f)
}

// Primary returns the primary user, or an empty Optional if nobody is signed
// in.
func (s *Store) Primary() (goutil.Optional[User], error) {
	f, err := s.read()
	if err != nil {
		return goutil.Empty[User](), err
	}
	return f.primary(), nil
}

func (s *Store) Users() ([]User, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.Users, nil
}

func (s *Store) read() (*file, error) {
	defer debug.FunctionTimer().End()
	f := &file{}
	err := configfile.ParseFile(s.path, f)
	if errors.Is(err, fs.ErrNotExist) {
		return &file{}, nil
	}
	if err != nil {
		return nil, usererr.WithUserMessage(err, "could not read session file %s", s.path)
	}
	return f, nil
}

func (s *Store) write(f *file) error {
	return configfile.WriteFile(s.path, f)
}

func (f *file) primary() goutil.Optional[User] {
	u, ok := lo.Find(f.Users, func(u User) bool { return u.ID == f.Primary })
	if !ok {
		return goutil.Empty[User]()
	}
	return goutil.NewOptional(u)
}
